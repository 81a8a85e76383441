package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/clm-workflow/internal/model"
)

type ExcelGenerator interface {
	Generate(register model.ApprovalsRegister) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

// ExportStore is the read-only slice of persistence the exports need.
type ExportStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListApprovals(ctx context.Context, contractID uuid.UUID) ([]model.Approval, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	ListApprovalRegisterRows(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]model.ApprovalRegisterRow, error)
}

type ExportService struct {
	store ExportStore
	excel ExcelGenerator
	pdf   PDFGenerator
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewExportService(store ExportStore, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{
		store: store,
		excel: excel,
		pdf:   pdf,
	}
}

// ApprovalsRegister exports every approval of the caller's organization
// over the period as an XLSX register.
func (s *ExportService) ApprovalsRegister(ctx context.Context, p model.Principal, periodStart, periodEnd time.Time) (*ExportResult, error) {
	if periodStart.IsZero() || periodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	start := dateOnly(periodStart)
	end := dateOnly(periodEnd)
	if start.After(end) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := end.Add(24 * time.Hour)

	org, err := s.store.GetOrganization(ctx, p.OrgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.store.ListApprovalRegisterRows(ctx, p.OrgID, start, endExclusive)
	if err != nil {
		return nil, err
	}

	register := model.ApprovalsRegister{
		OrganizationID: p.OrgID,
		PeriodStart:    start,
		PeriodEnd:      end,
		Rows:           rows,
	}

	content, err := s.excel.Generate(register)
	if err != nil {
		return nil, err
	}

	target := sanitizeFileName(org.Name)
	if target == "" {
		target = org.ID.String()
	}
	fileName := fmt.Sprintf("approvals-%s-%s-%s.xlsx", target, start.Format("20060102"), end.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// ContractPDF exports a contract summary with its approval history.
func (s *ExportService) ContractPDF(ctx context.Context, p model.Principal, contractID uuid.UUID) (*ExportResult, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contract.OrganizationID != p.OrgID {
		return nil, ErrNotFound
	}

	org, err := s.store.GetOrganization(ctx, contract.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	approvals, err := s.store.ListApprovals(ctx, contractID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.ContractDocument{
		Contract:     *contract,
		Organization: *org,
		Approvals:    approvals,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contract-%s.pdf", sanitizeFileName(contract.Reference))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
