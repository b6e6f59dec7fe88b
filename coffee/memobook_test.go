package coffee

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buymeacoffee/contract"
)

func TestMemoBook_AddSkipsHeldKeys(t *testing.T) {
	b := NewMemoBook()
	assert.True(t, b.Add(memo("a", 1, 1)))
	assert.False(t, b.Add(memo("a", 1, 1)))
	assert.True(t, b.Add(memo("a", 2, 1)))
	assert.Equal(t, 2, b.Len())
}

func TestMemoBook_MergeIsMultiset(t *testing.T) {
	b := NewMemoBook()
	dup := memo("a", 1, 1)
	b.Add(dup)

	added := b.Merge([]contract.Memo{dup, dup, memo("b", 2, 2)})
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"a", "a", "b"}, names(b.Snapshot()))

	assert.Zero(t, b.Merge([]contract.Memo{dup, dup, memo("b", 2, 2)}))
	assert.Zero(t, b.Merge(nil))
	assert.Equal(t, 3, b.Len())
}

func TestMemoBook_SnapshotIsCopy(t *testing.T) {
	b := NewMemoBook()
	b.Add(memo("a", 1, 1))
	snap := b.Snapshot()
	snap[0].Name = "changed"
	assert.Equal(t, "a", b.Snapshot()[0].Name)
}

func TestMemoBook_Changed(t *testing.T) {
	b := NewMemoBook()
	b.Add(memo("a", 1, 1))
	b.Add(memo("b", 1, 2))

	select {
	case <-b.Changed():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-b.Changed():
		t.Fatal("signals should be coalesced")
	default:
	}

	b.Merge([]contract.Memo{memo("a", 1, 1)})
	select {
	case <-b.Changed():
		t.Fatal("no signal expected when nothing was appended")
	default:
	}
}

func TestExportReceipt(t *testing.T) {
	s, _ := connectedSession(t)

	var buf bytes.Buffer
	_, err := s.ExportReceipt(&buf)
	require.ErrorIs(t, err, ErrNoReceipt)

	draft := Draft{Name: "Ada", Message: "thanks", Amount: "0.001"}
	receipt, err := s.Submit(t.Context(), &draft)
	require.NoError(t, err)

	name, err := s.ExportReceipt(&buf)
	require.NoError(t, err)
	assert.Equal(t, "transaction-receipt-"+receipt.TransactionHash.Hex()+".json", name)
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, receipt.TransactionHash.Hex(), decoded["transactionHash"])
	assert.Equal(t, ReceiptStatusConfirmed, decoded["status"])
	assert.Equal(t, "Ada", decoded["name"])
}
