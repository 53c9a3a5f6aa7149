package scanner_test

import (
	"errors"
	"testing"

	"voyago/lsk-engine/internal/modules/lsk/scanner"

	"github.com/stretchr/testify/assert"
)

func TestScan_NoPlaceholders(t *testing.T) {
	result, err := scanner.Scan(`<Item name="widget" />`)
	assert.NoError(t, err)
	assert.Empty(t, result.PKOrder)
	assert.Empty(t, result.FKOrder)
}

func TestScan_SinglePlaceholder(t *testing.T) {
	result, err := scanner.Scan(`<Item id="items:id:widget-1" />`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"items:id:widget-1"}, result.PKOrder)
	assert.Len(t, result.PKFragments["items:id:widget-1"], 1)
}

func TestScan_RepeatedPlaceholderAcrossFragments(t *testing.T) {
	text := `<Item id="items:id:widget-1" /><Detail item_id="items:id:widget-1" />`
	result, err := scanner.Scan(text)
	assert.NoError(t, err)
	assert.Equal(t, []string{"items:id:widget-1"}, result.PKOrder)
	assert.Len(t, result.PKFragments["items:id:widget-1"], 2)
}

func TestScan_ReferenceResolvesToPlaceholder(t *testing.T) {
	text := `<Item id="items:id:widget-1" /><Detail item_id="REF:{items:id:widget-1}" />`
	result, err := scanner.Scan(text)
	assert.NoError(t, err)
	assert.Equal(t, []string{`REF:{items:id:widget-1}`}, result.FKOrder)
	assert.Equal(t, "items:id:widget-1", result.FKTargets[`REF:{items:id:widget-1}`])
}

func TestScan_ExtraColonsNeverMatch(t *testing.T) {
	result, err := scanner.Scan(`<Item id="items:id:widget:1:extra" />`)
	assert.NoError(t, err)
	assert.Empty(t, result.PKOrder)
}

func TestScan_EmptySegmentIsAlwaysAnError(t *testing.T) {
	_, err := scanner.Scan(`<Item id="items::widget-1" />`)
	assert.ErrorIs(t, err, scanner.ErrInvalidPlaceholder)
}

func TestScan_EmptyLogicalIdIsAnError(t *testing.T) {
	_, err := scanner.Scan(`<Item id="items:id:" />`)
	assert.ErrorIs(t, err, scanner.ErrInvalidPlaceholder)
}

func TestScan_BadCharsetInPKIsSilentlyIgnored(t *testing.T) {
	result, err := scanner.Scan(`<Item id="items!:id:widget-1" />`)
	assert.NoError(t, err)
	assert.Empty(t, result.PKOrder)
}

func TestScan_BadCharsetInReferenceBodyIsAnError(t *testing.T) {
	_, err := scanner.Scan(`<Detail item_id="REF:{items!:id:widget-1}" />`)
	assert.True(t, errors.Is(err, scanner.ErrInvalidPlaceholder))
}

func TestScan_WhitespaceInLogicalIdWithinReferenceIsAnError(t *testing.T) {
	_, err := scanner.Scan(`<Detail item_id="REF:{items:id:widget 1}" />`)
	assert.ErrorIs(t, err, scanner.ErrInvalidPlaceholder)
}

func TestScan_WhitespaceInLogicalIdBarePKIsSilentlyIgnored(t *testing.T) {
	result, err := scanner.Scan(`<Item id="items:id:widget 1" />`)
	assert.NoError(t, err)
	assert.Empty(t, result.PKOrder)
}

func TestScan_MalformedReferenceWrapperIsNotAReference(t *testing.T) {
	// Missing closing brace: not structurally a reference at all, so it falls
	// through to bare-PK parsing, which also doesn't match (wrong shape).
	result, err := scanner.Scan(`<Detail item_id="REF:{items:id:widget-1" />`)
	assert.NoError(t, err)
	assert.Empty(t, result.FKOrder)
	assert.Empty(t, result.PKOrder)
}

func TestScan_DistinctKeysPreserveFirstSeenOrder(t *testing.T) {
	text := `<A id="b:c:1" /><B id="a:c:1" /><C id="b:c:1" />`
	result, err := scanner.Scan(text)
	assert.NoError(t, err)
	assert.Equal(t, []string{"b:c:1", "a:c:1"}, result.PKOrder)
}
