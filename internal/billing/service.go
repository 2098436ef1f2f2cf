package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

type unpaidOrderLoader interface {
	UnpaidOrders(ctx context.Context, sellerName string) ([]models.Order, error)
}

type expenseWriter interface {
	CreateIfAbsent(ctx context.Context, exp *models.Expense) (bool, error)
	DeleteByBillNumber(ctx context.Context, billNumber string) (int64, error)
}

type userFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type passwordVerifier interface {
	Verify(password, encodedHash string) (bool, error)
}

// Service exposes bill generation and browsing operations.
type Service interface {
	GenerateBill(ctx context.Context, actor identity.Actor, input GenerateBillInput) (*GenerateBillResult, error)
	ListBills(ctx context.Context, actor identity.Actor) ([]StoredBill, error)
	GetBill(ctx context.Context, actor identity.Actor, billNumber string) (*StoredBill, error)
	DeleteBill(ctx context.Context, actor identity.Actor, id uint, password string) error
}

// GenerateBillInput is the validated bill-generation payload. BillNumber is
// optional; when blank the bill is computed but not stored.
type GenerateBillInput struct {
	SellerName string `json:"seller_name" validate:"required"`
	BillNumber string `json:"bill_number"`
}

// GenerateBillResult carries the computed payload plus persistence outcome.
// A save failure does not discard the computation.
type GenerateBillResult struct {
	*Payload
	BillNumber string `json:"bill_number,omitempty"`
	Saved      bool   `json:"saved"`
	SaveError  string `json:"save_error,omitempty"`
}

// StoredBill is a persisted bill with its serialized documents parsed back.
type StoredBill struct {
	ID         uint            `json:"id"`
	BillNumber string          `json:"bill_number"`
	SellerName string          `json:"seller_name"`
	Orders     []AdjustedOrder `json:"orders"`
	Summary    Summary         `json:"summary"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type service struct {
	repo     *Repository
	orders   unpaidOrderLoader
	expenses expenseWriter
	users    userFinder
	hasher   passwordVerifier
	policy   *PolicyResolver
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a billing service instance.
func NewService(
	repo *Repository,
	orders unpaidOrderLoader,
	expenses expenseWriter,
	users userFinder,
	hasher passwordVerifier,
	policy *PolicyResolver,
	dbClient *db.Client,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if expenses == nil {
		return nil, fmt.Errorf("expense writer required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password verifier required")
	}
	if policy == nil {
		return nil, fmt.Errorf("policy resolver required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		orders:   orders,
		expenses: expenses,
		users:    users,
		hasher:   hasher,
		policy:   policy,
		dbClient: dbClient,
		logg:     logg,
	}, nil
}

// GenerateBill computes the seller's bill from unpaid delivered/return
// orders and, when a bill number is supplied, persists the snapshot and
// derives the ledger expenses.
func (s *service) GenerateBill(ctx context.Context, actor identity.Actor, input GenerateBillInput) (*GenerateBillResult, error) {
	sellerName := strings.ToLower(strings.TrimSpace(input.SellerName))
	if sellerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_name is required")
	}
	if !actor.CanActFor(sellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only bill their own orders")
	}

	orders, err := s.orders.UnpaidOrders(ctx, sellerName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading unpaid orders")
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no unpaid orders for this seller")
	}

	payload := BuildBill(sellerName, orders, s.policy)
	result := &GenerateBillResult{Payload: payload}

	billNumber := strings.TrimSpace(input.BillNumber)
	if billNumber == "" {
		return result, nil
	}

	result.BillNumber = billNumber
	if err := s.persist(ctx, actor, billNumber, payload); err != nil {
		// The computation stands; only the save failed.
		if s.logg != nil {
			s.logg.Error(ctx, "persisting bill failed", err)
		}
		result.SaveError = err.Error()
		return result, nil
	}
	result.Saved = true
	return result, nil
}

func (s *service) persist(ctx context.Context, actor identity.Actor, billNumber string, payload *Payload) error {
	billData, err := json.Marshal(payload.Orders)
	if err != nil {
		return fmt.Errorf("serializing bill data: %w", err)
	}
	summaryData, err := json.Marshal(payload.Summary)
	if err != nil {
		return fmt.Errorf("serializing summary data: %w", err)
	}

	bill := &models.Bill{
		BillNumber:  billNumber,
		SellerName:  payload.SellerName,
		BillData:    string(billData),
		SummaryData: string(summaryData),
	}
	if err := s.repo.Upsert(ctx, bill); err != nil {
		return fmt.Errorf("upserting bill: %w", err)
	}

	stored, err := s.repo.FindByBillNumber(ctx, billNumber)
	if err != nil {
		return fmt.Errorf("reloading bill: %w", err)
	}
	billID := uint(0)
	if stored != nil {
		billID = stored.ID
	}

	for _, entry := range []struct {
		expenseType enums.ExpenseType
		amount      float64
		label       string
	}{
		{enums.ExpenseTypeShipperPrice, payload.Summary.TotalShipperPrice, "shipper payment"},
		{enums.ExpenseTypeDC, payload.Summary.TotalDC, "delivery charges"},
	} {
		if entry.amount == 0 {
			continue
		}
		_, err := s.expenses.CreateIfAbsent(ctx, &models.Expense{
			SellerName:  payload.SellerName,
			ExpenseType: entry.expenseType,
			Amount:      entry.amount,
			Description: fmt.Sprintf("%s for bill %s", entry.label, billNumber),
			BillNumber:  billNumber,
			BillID:      billID,
			CreatedBy:   actor.Username,
		})
		if err != nil {
			return fmt.Errorf("recording %s expense: %w", entry.expenseType, err)
		}
	}
	return nil
}

func (s *service) ListBills(ctx context.Context, actor identity.Actor) ([]StoredBill, error) {
	scope := ""
	if !actor.IsAdmin() {
		scope = actor.Username
	}

	bills, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bills")
	}

	stored := make([]StoredBill, 0, len(bills))
	for _, bill := range bills {
		parsed, err := s.parse(bill)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *parsed)
	}
	return stored, nil
}

func (s *service) GetBill(ctx context.Context, actor identity.Actor, billNumber string) (*StoredBill, error) {
	if strings.TrimSpace(billNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bill_number is required")
	}

	bill, err := s.repo.FindByBillNumber(ctx, strings.TrimSpace(billNumber))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bill")
	}
	if bill == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
	}
	if !actor.CanActFor(bill.SellerName) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only view their own bills")
	}
	return s.parse(*bill)
}

// DeleteBill removes a stored bill and its derived ledger rows. The caller
// must be an admin and re-supply their account password as a confirmation
// gate.
func (s *service) DeleteBill(ctx context.Context, actor identity.Actor, id uint, password string) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may delete bills")
	}
	if password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	admin, err := s.users.FindByUsername(ctx, actor.Username)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading admin account")
	}
	if admin == nil || admin.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin account not found")
	}

	ok, err := s.hasher.Verify(password, admin.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid password")
	}

	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bill")
	}
	if bill == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting bill")
	}
	if _, err := s.expenses.DeleteByBillNumber(ctx, bill.BillNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting bill expenses")
	}
	return nil
}

func (s *service) parse(bill models.Bill) (*StoredBill, error) {
	stored := &StoredBill{
		ID:         bill.ID,
		BillNumber: bill.BillNumber,
		SellerName: bill.SellerName,
		CreatedAt:  bill.CreatedAt,
		UpdatedAt:  bill.UpdatedAt,
	}
	if bill.BillData != "" {
		if err := json.Unmarshal([]byte(bill.BillData), &stored.Orders); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("parsing bill %s data", bill.BillNumber))
		}
	}
	if bill.SummaryData != "" {
		if err := json.Unmarshal([]byte(bill.SummaryData), &stored.Summary); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("parsing bill %s summary", bill.BillNumber))
		}
	}
	return stored, nil
}
