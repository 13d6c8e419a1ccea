package storage

import (
	"context"
	"testing"
)

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		url           string
		account       string
		containerName string
		blobName      string
		wantErr       bool
	}{
		{url: "https://acct.blob.core.windows.net/faces/2024/a.jpg", account: "acct", containerName: "faces", blobName: "2024/a.jpg"},
		{url: "https://acct.blob.core.windows.net/faces?blob=a.jpg", account: "acct", containerName: "faces", blobName: "a.jpg"},
		{url: "https://acct.blob.core.windows.net/faces", wantErr: true},
		{url: "https://acct.blob.core.windows.net/", wantErr: true},
		{url: "https://example.com/faces/a.jpg", wantErr: true},
		{url: "https://.blob.core.windows.net/faces/a.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			account, containerName, blobName, err := ParseBlobURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %s/%s/%s", account, containerName, blobName)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if account != tt.account || containerName != tt.containerName || blobName != tt.blobName {
				t.Errorf("Got %s/%s/%s", account, containerName, blobName)
			}
		})
	}
}

func TestNewAzureImageFetcher_InvalidKey(t *testing.T) {
	if _, err := NewAzureImageFetcher("acct", "not base64!"); err == nil {
		t.Error("Expected error for non-base64 key")
	}
}

func TestAzureImageFetcher_ForeignAccount(t *testing.T) {
	fetcher, err := NewAzureImageFetcher("acct", "a2V5")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Rejected before any request is made
	if _, err := fetcher.FetchImage(context.Background(), "https://other.blob.core.windows.net/faces/a.jpg"); err == nil {
		t.Error("Expected error for another account")
	}
}
