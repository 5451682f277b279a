package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
	"github.com/bivex/webpay-client/internal/infrastructure/storage"
	"github.com/bivex/webpay-client/internal/platform"
)

// FallbackKey is the single key holding the fallback receipt list, a JSON
// array of receipt strings in append order. Entries are never removed here.
const FallbackKey = "webpay_receipts"

// Backend identifies which storage mechanism a store resolved to
type Backend int

const (
	BackendNone Backend = iota
	BackendDevice
	BackendFallback
)

func (b Backend) String() string {
	switch b {
	case BackendDevice:
		return "device"
	case BackendFallback:
		return "fallback"
	}
	return "none"
}

// Store persists proof-of-purchase receipts through whichever mechanism the
// platform supports: the device-native store when present, otherwise a
// local key-value fallback with exact-match deduplication.
type Store struct {
	device platform.DeviceReceiptStore // nil when the capability is absent
	local  storage.KeyValueStore       // nil when fallback is disabled

	mu     sync.Mutex
	logger *zap.Logger
}

// NewStore creates a receipt store over the available backends. Either
// collaborator may be nil.
func NewStore(device platform.DeviceReceiptStore, local storage.KeyValueStore, logger *zap.Logger) *Store {
	return &Store{device: device, local: local, logger: logger}
}

// Backend reports which mechanism StoreReceipt will use
func (s *Store) Backend() Backend {
	if s.device != nil {
		return BackendDevice
	}
	if s.local != nil {
		return BackendFallback
	}
	return BackendNone
}

// StoreReceipt persists a receipt. Device-store failures map to
// AddReceiptError; with no backend at all the attempt fails with
// PayPlatformUnavailable. Storing the same receipt twice is a no-op on the
// fallback backend.
func (s *Store) StoreReceipt(ctx context.Context, receipt string, product *entity.ProductInfo) error {
	switch s.Backend() {
	case BackendDevice:
		return s.storeDevice(ctx, receipt, product)
	case BackendFallback:
		return s.storeFallback(ctx, receipt, product)
	}
	return domainErrors.New(
		domainErrors.KindPayPlatformUnavailable,
		domainErrors.CodePayPlatformUnavailable,
		"no receipt storage mechanism is available on this platform",
	).WithProduct(product)
}

func (s *Store) storeDevice(ctx context.Context, receipt string, product *entity.ProductInfo) error {
	if err := s.device.AddReceipt(ctx, receipt); err != nil {
		code := domainErrors.CodeAddReceiptError
		var storeErr *platform.StoreError
		if errors.As(err, &storeErr) && storeErr.Code != "" {
			code = storeErr.Code
		}
		return domainErrors.Wrap(
			domainErrors.KindAddReceipt,
			code,
			"the device receipt store rejected the receipt",
			err,
		).WithProduct(product)
	}

	s.logger.Debug("Stored receipt on device", zap.String("product_id", product.ProductID))
	return nil
}

func (s *Store) storeFallback(ctx context.Context, receipt string, product *entity.ProductInfo) error {
	// Check-then-append is atomic within an attempt; duplicate writes of
	// the same receipt across racing attempts degrade to a no-op anyway.
	s.mu.Lock()
	defer s.mu.Unlock()

	receipts, err := s.readFallback(ctx)
	if err != nil {
		return fmt.Errorf("failed to read fallback receipts: %w", err)
	}

	for _, existing := range receipts {
		if existing == receipt {
			s.logger.Debug("Receipt already stored, skipping",
				zap.String("product_id", product.ProductID),
			)
			return nil
		}
	}

	receipts = append(receipts, receipt)
	data, err := json.Marshal(receipts)
	if err != nil {
		return fmt.Errorf("failed to encode fallback receipts: %w", err)
	}
	if err := s.local.Set(ctx, FallbackKey, data); err != nil {
		return fmt.Errorf("failed to write fallback receipts: %w", err)
	}

	s.logger.Debug("Stored receipt in fallback store",
		zap.String("product_id", product.ProductID),
		zap.Int("stored", len(receipts)),
	)
	return nil
}

// Receipts lists all stored receipts from the active backend
func (s *Store) Receipts(ctx context.Context) ([]string, error) {
	switch s.Backend() {
	case BackendDevice:
		return s.device.Receipts(ctx)
	case BackendFallback:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.readFallback(ctx)
	}
	return nil, nil
}

func (s *Store) readFallback(ctx context.Context) ([]string, error) {
	data, err := s.local.Get(ctx, FallbackKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var receipts []string
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, fmt.Errorf("fallback receipt list is corrupt: %w", err)
	}
	return receipts, nil
}
