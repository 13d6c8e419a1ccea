package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobHostSuffix is the host suffix of Azure blob service endpoints
const BlobHostSuffix = ".blob.core.windows.net"

// AzureImageFetcher downloads images from one Azure storage account
type AzureImageFetcher struct {
	account string
	client  *azblob.Client
}

// NewAzureImageFetcher creates a fetcher authenticated with a shared key
func NewAzureImageFetcher(accountName string, accountKey string) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, BlobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create azure client: %w", err)
	}

	return &AzureImageFetcher{account: accountName, client: client}, nil
}

// FetchImage downloads and decodes the blob referenced by blobURL
func (s *AzureImageFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	account, containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}
	if account != s.account {
		return nil, fmt.Errorf("blob account %q is not configured", account)
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	return decode(resp.Body)
}

// ParseBlobURL splits https://<account>.blob.core.windows.net/<container>/<blob>
// into its parts. The legacy form /<container>?blob=<blob> is also accepted.
func ParseBlobURL(blobURL string) (account, containerName, blobName string, err error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	host := parsedURL.Hostname()
	account, ok := strings.CutSuffix(host, BlobHostSuffix)
	if !ok || account == "" {
		return "", "", "", fmt.Errorf("invalid blob URL: host %q is not a blob endpoint", host)
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	if blob := parsedURL.Query().Get("blob"); blob != "" {
		containerName, blobName = strings.TrimSuffix(path, "/"), blob
	} else {
		containerName, blobName, _ = strings.Cut(path, "/")
	}
	if containerName == "" || blobName == "" {
		return "", "", "", fmt.Errorf("invalid blob URL: missing container or blob name")
	}

	return account, containerName, blobName, nil
}
