package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/search"
	"github.com/sirupsen/logrus"
)

// AzureArchiver writes completed search snapshots to Azure Blob
// Storage so results survive database retention.
type AzureArchiver struct {
	client        *azblob.Client
	containerName string
}

// Ensure AzureArchiver implements the completion hook
var _ search.CompletionHook = (*AzureArchiver)(nil)

// snapshot is the archived document: the search record plus every
// stored result, grouped by platform.
type snapshot struct {
	Search     *models.Search                   `json:"search"`
	Results    map[string][]models.PlatformItem `json:"results"`
	ArchivedAt time.Time                        `json:"archivedAt"`
}

// NewAzureArchiver creates a blob client using managed identity and
// makes sure the container exists.
func NewAzureArchiver(accountName, containerName string) (*AzureArchiver, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	archiver := &AzureArchiver{
		client:        client,
		containerName: containerName,
	}

	if err := archiver.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return archiver, nil
}

func (a *AzureArchiver) ensureContainer() error {
	ctx := context.Background()

	_, err := a.client.CreateContainer(ctx, a.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", a.containerName)
	} else {
		logrus.Infof("Created container %s", a.containerName)
	}

	return nil
}

// SearchCompleted uploads the snapshot. Upload failures are logged and
// swallowed so archival never disturbs the search flow.
func (a *AzureArchiver) SearchCompleted(ctx context.Context, sr *models.Search, results map[string][]models.PlatformItem) {
	doc := snapshot{
		Search:     sr,
		Results:    results,
		ArchivedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		logrus.Errorf("Failed to encode archive for search %s: %v", sr.ID, err)
		return
	}

	if err := a.store(ctx, BlobName(sr.ID), data); err != nil {
		logrus.Errorf("Failed to archive search %s: %v", sr.ID, err)
	}
}

// BlobName is the archive location for a search.
func BlobName(searchID string) string {
	return fmt.Sprintf("searches/%s.json", searchID)
}

func (a *AzureArchiver) store(ctx context.Context, filename string, data []byte) error {
	_, err := a.client.UploadBuffer(ctx, a.containerName, filename, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024), // 1MB blocks
		Concurrency: 3,
	})

	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", filename, err)
	}

	logrus.Infof("Archived %s to Azure Blob Storage", filename)
	return nil
}

// Retrieve reads an archived snapshot back.
func (a *AzureArchiver) Retrieve(ctx context.Context, searchID string) ([]byte, error) {
	filename := BlobName(searchID)

	response, err := a.client.DownloadStream(ctx, a.containerName, filename, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", filename, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}

	return data, nil
}

// List returns the archived search blob names under the standard
// prefix.
func (a *AzureArchiver) List(ctx context.Context) ([]string, error) {
	prefix := "searches/"

	var blobNames []string
	pager := a.client.NewListBlobsFlatPager(a.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}

		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				blobNames = append(blobNames, *blob.Name)
			}
		}
	}

	return blobNames, nil
}
