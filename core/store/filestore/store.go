package filestore

import "fmt"

// Store bundles every on-disk store implementation rooted at one data
// directory, for daemons that want a single constructor instead of wiring
// each store individually.
type Store struct {
	Blocks        *BlockStore
	Bills         *BillStore
	Contacts      *ContactStore
	Identity      *IdentityStore
	Companies     *CompanyStore
	Files         *FileBlobStore
	Notifications *NotificationStore
	NostrOffsets  *NostrOffsetStore
	NostrQueue    *NostrQueueStore
}

// Open opens (creating if necessary) every store rooted at dir.
func Open(dir string) (*Store, error) {
	blocks, err := NewBlockStore(dir + "/chains")
	if err != nil {
		return nil, fmt.Errorf("open block store: %w", err)
	}
	bills, err := NewBillStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open bill store: %w", err)
	}
	contacts, err := NewContactStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open contact store: %w", err)
	}
	id, err := NewIdentityStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open identity store: %w", err)
	}
	companies, err := NewCompanyStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open company store: %w", err)
	}
	notifications, err := NewNotificationStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open notification store: %w", err)
	}
	offsets, err := NewNostrOffsetStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open nostr offset store: %w", err)
	}
	queue, err := NewNostrQueueStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open nostr queue store: %w", err)
	}

	return &Store{
		Blocks:        blocks,
		Bills:         bills,
		Contacts:      contacts,
		Identity:      id,
		Companies:     companies,
		Files:         NewFileBlobStore(dir),
		Notifications: notifications,
		NostrOffsets:  offsets,
		NostrQueue:    queue,
	}, nil
}
