package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleClassification() core.Classification {
	return core.Classification{
		NotPurchasable: []string{"OFF"},
		Accepted: []core.AcceptedProduct{
			{ProductID: 1, VariantID: 2, Quantity: 3, OptionList: []core.OptionSelection{{OptionID: "113", OptionValue: "104"}}},
		},
		InsufficientStock: []core.StockLimit{{VariantSku: "LOW", AvailableAmount: 2}},
		BelowMinQuantity:  []core.MinQuantityLimit{{VariantSku: "MIN", MinQuantity: 5}},
		AboveMaxQuantity:  []core.MaxQuantityLimit{{VariantSku: "MAX", MaxQuantity: 10}},
		OutOfStock:        []string{"GONE"},
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestBytes_Sheets(t *testing.T) {
	data, err := Bytes(sampleClassification(), "order.csv")
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SheetSummary, SheetRejected, SheetAccepted}, f.GetSheetList())

	rejected, err := f.GetRows(SheetRejected)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"SKU", "Reason", "Limit"},
		{"OFF", ReasonNotPurchasable},
		{"GONE", ReasonOutOfStock},
		{"LOW", ReasonInsufficientStock, "2"},
		{"MIN", ReasonBelowMinimum, "5"},
		{"MAX", ReasonAboveMaximum, "10"},
	}, rejected)

	accepted, err := f.GetRows(SheetAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 2)
	assert.Equal(t, []string{"1", "2", "3", "113=104"}, accepted[1])

	total, err := f.GetCellValue(SheetSummary, "C8")
	require.NoError(t, err)
	assert.Equal(t, "6", total)
	name, err := f.GetCellValue(SheetSummary, "A2")
	require.NoError(t, err)
	assert.Equal(t, "order.csv", name)
}

func TestBytes_EmptyClassification(t *testing.T) {
	data, err := Bytes(core.Classification{}, "empty.csv")
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows(SheetRejected)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver_Archive(t *testing.T) {
	client := &fakeS3{}
	a := NewArchiver(client, "reports", "bulk/")
	a.now = func() time.Time { return time.Date(2025, 7, 4, 23, 0, 0, 0, time.UTC) }

	loc, err := a.Archive(context.Background(), "sess-1", sampleClassification())
	require.NoError(t, err)

	assert.Equal(t, "s3://reports/bulk/2025/07/04/sess-1.xlsx", loc)
	require.NotNil(t, client.input)
	assert.Equal(t, "reports", *client.input.Bucket)
	assert.Equal(t, ContentType, *client.input.ContentType)
	assert.EqualValues(t, len(client.body), *client.input.ContentLength)

	f := openWorkbook(t, client.body)
	assert.Contains(t, f.GetSheetList(), SheetRejected)
}

func TestS3Archiver_PutFails(t *testing.T) {
	a := NewArchiver(&fakeS3{err: errors.New("access denied")}, "reports", "")

	_, err := a.Archive(context.Background(), "sess-1", sampleClassification())
	assert.ErrorContains(t, err, "access denied")
}
