// internal/services/item_service.go
package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/authentrace/provenance-backend/internal/config"
	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/models"
	"github.com/authentrace/provenance-backend/internal/utils"
)

// ItemService is the application layer over the ledger: it runs every
// mint and transfer through the Guard, answers provenance queries via
// the Resolver, and handles the side effects (certificate uploads,
// transfer notices) that the ledger core deliberately knows nothing
// about.
type ItemService struct {
	guard         *ledger.Guard
	resolver      *ledger.Resolver
	items         ledger.ItemStore
	accounts      ledger.AccountDirectory
	storage       *StorageService
	notifications *NotificationService
	cfg           *config.Config
}

type MintRequest struct {
	ProductID string `json:"product_id" validate:"required,min=1,max=255"`
	// ItemID binds a pre-printed physical identifier (QR serial) instead
	// of generating one.
	ItemID string `json:"item_id,omitempty" validate:"omitempty,min=6,max=70"`
}

type TransferRequest struct {
	NewOwnerID uuid.UUID `json:"new_owner_id" validate:"required"`
}

type MintResponse struct {
	Item        *models.Item              `json:"item"`
	Transaction *models.TransactionRecord `json:"transaction"`
	QRPayload   string                    `json:"qr_payload"`
}

type ItemHistory struct {
	Item         *models.Item               `json:"item"`
	CurrentOwner uuid.UUID                  `json:"current_owner"`
	Transactions []models.TransactionRecord `json:"transactions"`
}

type OwnedItem struct {
	Item     *models.Item              `json:"item"`
	Acquired *models.TransactionRecord `json:"acquired"`
}

func NewItemService(
	guard *ledger.Guard,
	resolver *ledger.Resolver,
	items ledger.ItemStore,
	accounts ledger.AccountDirectory,
	storage *StorageService,
	notifications *NotificationService,
	cfg *config.Config,
) *ItemService {
	return &ItemService{
		guard:         guard,
		resolver:      resolver,
		items:         items,
		accounts:      accounts,
		storage:       storage,
		notifications: notifications,
		cfg:           cfg,
	}
}

// Mint registers a new physical item for the acting manufacturer and
// returns the opened chain's first transaction plus the QR payload to
// print on the product.
func (s *ItemService) Mint(ctx context.Context, actor *models.User, req *MintRequest) (*MintResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var (
		item   *models.Item
		record *models.TransactionRecord
		err    error
	)
	if req.ItemID != "" {
		item, record, err = s.guard.MintItem(ctx, actor, req.ItemID, req.ProductID)
	} else {
		item, record, err = s.guard.Mint(ctx, actor, req.ProductID)
	}
	if err != nil {
		return nil, err
	}

	return &MintResponse{
		Item:        item,
		Transaction: record,
		QRPayload:   s.QRPayload(item.ItemID),
	}, nil
}

// Transfer hands the item to another account and, on success, notifies
// the receiver asynchronously. The notice is best-effort; the ledger
// append is the authoritative event.
func (s *ItemService) Transfer(ctx context.Context, actor *models.User, itemID string, req *TransferRequest) (*models.TransactionRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	record, err := s.guard.Transfer(ctx, actor, itemID, req.NewOwnerID)
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		go s.notifyTransfer(itemID, req.NewOwnerID, record)
	}
	return record, nil
}

func (s *ItemService) notifyTransfer(itemID string, newOwnerID uuid.UUID, record *models.TransactionRecord) {
	ctx := context.Background()
	newOwner, err := s.accounts.AccountByID(ctx, newOwnerID)
	if err != nil || newOwner == nil {
		return
	}
	item, err := s.items.ItemByID(ctx, itemID)
	if err != nil || item == nil {
		return
	}
	if err := s.notifications.SendTransferNotice(newOwner, item, record); err != nil {
		logrus.WithError(err).WithField("item_id", itemID).Warn("Failed to send transfer notice")
	}
}

// History returns the item's metadata together with its full ownership
// chain, oldest first.
func (s *ItemService) History(ctx context.Context, itemID string) (*ItemHistory, error) {
	records, err := s.resolver.History(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.ItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		// Chain exists but the item row is gone; the ledger is the source
		// of truth, so still serve the history.
		item = &models.Item{ItemID: itemID}
	}

	return &ItemHistory{
		Item:         item,
		CurrentOwner: records[len(records)-1].OwnerID,
		Transactions: records,
	}, nil
}

// Owned lists every item the account currently holds, each with the
// transaction that made it the owner.
func (s *ItemService) Owned(ctx context.Context, accountID uuid.UUID) ([]OwnedItem, error) {
	heads, err := s.resolver.OwnedBy(ctx, accountID)
	if err != nil {
		return nil, err
	}

	owned := make([]OwnedItem, 0, len(heads))
	for i := range heads {
		head := heads[i]
		item, err := s.items.ItemByID(ctx, head.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			item = &models.Item{ItemID: head.ItemID}
		}
		owned = append(owned, OwnedItem{Item: item, Acquired: &head})
	}
	return owned, nil
}

// Verify answers the public QR-scan lookup: anyone holding the item can
// check its provenance without an account.
func (s *ItemService) Verify(ctx context.Context, itemID string) (*ItemHistory, error) {
	return s.History(ctx, itemID)
}

// QRPayload is the string encoded into the item's printed QR code: the
// public verification URL for the item.
func (s *ItemService) QRPayload(itemID string) string {
	return fmt.Sprintf("%s/verify/%s", s.cfg.Frontend.BaseURL, itemID)
}

// AttachCertificate uploads a certificate document for the item and
// links it. Only the current owner or an admin may attach one.
func (s *ItemService) AttachCertificate(ctx context.Context, actor *models.User, itemID string, file multipart.File, header *multipart.FileHeader) (*models.Item, error) {
	item, err := s.items.ItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ledger.ErrItemNotFound
	}

	owner, err := s.resolver.CurrentOwner(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ledger.ErrNotMinted
	}
	if *owner != actor.ID && !actor.IsAdmin() {
		return nil, ledger.ErrNotOwner
	}

	result, err := s.storage.UploadCertificate(file, header, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload certificate: %w", err)
	}

	if err := s.items.SetItemCertificate(ctx, itemID, result.URL); err != nil {
		return nil, err
	}
	item.CertificateURL = result.URL
	return item, nil
}
