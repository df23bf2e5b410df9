package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"cashflow/pkg/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferLine(t *testing.T) {
	line := TransferLine(domain.Transfer{From: "Bank_C", To: "World_Bank", Amount: 700, Channel: "Google_Pay"})
	assert.Equal(t, "| Bank_C               pays Rs      700 to World_Bank           via Google_Pay", line)
}

func TestHeaderIsCentred(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, TransfersTitle)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Len(t, lines[0], boxWidth)
	assert.Len(t, lines[1], boxWidth)
	assert.Contains(t, lines[1], TransfersTitle)
	assert.Equal(t, lines[0], lines[2])
}

func TestTransfers(t *testing.T) {
	var buf bytes.Buffer
	Transfers(&buf, []domain.Transfer{
		{From: "World_Bank", To: "Bank_B", Amount: 700, Channel: "Google_Pay"},
		{From: "Bank_D", To: "World_Bank", Amount: 500, Channel: "PayTM"},
	})

	out := buf.String()
	assert.Contains(t, out, TransfersTitle)
	assert.Contains(t, out, "pays Rs      700 to Bank_B")
	assert.Contains(t, out, "via PayTM")
}

func TestTransfersEmpty(t *testing.T) {
	var buf bytes.Buffer
	Transfers(&buf, nil)
	assert.Contains(t, buf.String(), "No transfers required")
}

func TestBalances(t *testing.T) {
	var buf bytes.Buffer
	Balances(&buf, []domain.Balance{
		{Party: "A", Amount: 1000},
		{Party: "C", Amount: -700},
		{Party: "F", Amount: 0},
	})

	out := buf.String()
	assert.Contains(t, out, "receives")
	assert.Contains(t, out, "pays")
	assert.Contains(t, out, "settled")
	assert.Contains(t, out, "-700")
}

func TestPlanSummary(t *testing.T) {
	plan := &domain.Plan{
		ID: uuid.New(),
		Parties: []domain.Party{
			{Name: "Hub", Channels: domain.NewChannelSet("Cash", "UPI")},
			{Name: "Shop", Channels: domain.NewChannelSet("Cash")},
		},
		Intermediary: 0,
		Transfers: []domain.Transfer{
			{From: "Shop", To: "Hub", Amount: 9000000000000000000, Channel: "Cash"},
			{From: "Shop", To: "Hub", Amount: 9000000000000000000, Channel: "Cash"},
		},
		IntermediaryHops: 1,
	}

	var buf bytes.Buffer
	Plan(&buf, plan)

	out := buf.String()
	assert.Contains(t, out, "Rs 18000000000000000000")
	assert.Contains(t, out, "Intermediary:      Hub")
	assert.Contains(t, out, plan.ID.String())

	plan.Intermediary = domain.NoIntermediary
	buf.Reset()
	Summary(&buf, plan)
	assert.Contains(t, buf.String(), "Intermediary:      none")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []domain.Balance{{Party: "A", Amount: -5}}))

	var got []domain.Balance
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, int64(-5), got[0].Amount)
}
