package filestore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// FileBlobStore is a store.FileBlobStore that writes blobs directly as
// files under dir/uploads/<uploadID>/<fileName> and dir/attachments/<billID>/<fileName>,
// rather than wrapping them in a JSON envelope.
type FileBlobStore struct {
	uploadsDir    string
	attachmentDir string
}

func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{
		uploadsDir:    filepath.Join(dir, "uploads"),
		attachmentDir: filepath.Join(dir, "attachments"),
	}
}

func (s *FileBlobStore) WriteTempUpload(_ context.Context, uploadID, fileName string, data []byte) error {
	dir := filepath.Join(s.uploadsDir, uploadID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileName), data, 0o600)
}

func (s *FileBlobStore) ReadTempUpload(_ context.Context, uploadID, fileName string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.uploadsDir, uploadID, fileName))
}

func (s *FileBlobStore) RemoveTempUpload(_ context.Context, uploadID string) error {
	return os.RemoveAll(filepath.Join(s.uploadsDir, uploadID))
}

func (s *FileBlobStore) SaveAttachment(_ context.Context, billID chain.BillID, fileName string, encrypted []byte) error {
	dir := filepath.Join(s.attachmentDir, string(billID))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileName), encrypted, 0o600)
}

func (s *FileBlobStore) OpenAttachment(_ context.Context, billID chain.BillID, fileName string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.attachmentDir, string(billID), fileName))
}
