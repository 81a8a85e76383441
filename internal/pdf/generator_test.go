package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/clm-workflow/internal/model"
)

func TestGenerateContractSummary(t *testing.T) {
	comment := "LGTM"
	resolvedAt := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	doc := model.ContractDocument{
		Contract: model.Contract{
			ID:               uuid.New(),
			Reference:        "CTR-2026-0042",
			Title:            "Supply Agreement",
			Status:           model.ContractStatusActive,
			CounterpartyName: "Acme GmbH",
			Amount:           125000,
		},
		Organization: model.Organization{ID: uuid.New(), Name: "Northwind Legal"},
		Approvals: []model.Approval{
			{
				Type:       model.ApprovalTypeLegal,
				Status:     model.ApprovalStatusApproved,
				Comment:    &comment,
				ResolvedAt: &resolvedAt,
				CreatedAt:  time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	content, err := NewGenerator().Generate(doc)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateWithoutApprovals(t *testing.T) {
	content, err := NewGenerator().Generate(model.ContractDocument{
		Contract:     model.Contract{Reference: "CTR-2026-0001", Title: "NDA", Status: model.ContractStatusDraft},
		Organization: model.Organization{Name: "Org"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
