package main

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordex-io/ordex/go/backend/index/memory"
	"github.com/ordex-io/ordex/go/common"
)

func TestExportRoundTrip(t *testing.T) {
	idx := memory.NewIndex[common.Key, uint32](common.KeySerializer{}, common.KeyComparator{}, common.Key{})
	defer idx.Close()

	for i := 0; i < 500; i++ {
		_, err := idx.GetOrAdd(common.Key{byte(i), byte(i >> 8)})
		require.NoError(t, err)
	}

	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	require.NoError(t, writeExport(writer, idx))
	require.NoError(t, writer.Close())

	reader, err := gzip.NewReader(bytes.NewReader(buffer.Bytes()))
	require.NoError(t, err)

	numKeys, err := verifyExport(reader)
	require.NoError(t, err, "export does not verify")
	assert.Equal(t, uint64(500), numKeys)
}

func TestExportOfEmptyIndexVerifies(t *testing.T) {
	idx := memory.NewIndex[common.Key, uint32](common.KeySerializer{}, common.KeyComparator{}, common.Key{})
	defer idx.Close()

	var buffer bytes.Buffer
	require.NoError(t, writeExport(&buffer, idx))

	numKeys, err := verifyExport(bytes.NewReader(buffer.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), numKeys)
}

func TestVerifyRejectsCorruptedExport(t *testing.T) {
	idx := memory.NewIndex[common.Key, uint32](common.KeySerializer{}, common.KeyComparator{}, common.Key{})
	defer idx.Close()

	for i := 0; i < 10; i++ {
		_, err := idx.GetOrAdd(common.Key{byte(i + 1)})
		require.NoError(t, err)
	}

	var buffer bytes.Buffer
	require.NoError(t, writeExport(&buffer, idx))

	// flip a bit in the last key
	data := buffer.Bytes()
	data[len(data)-1] ^= 0x01

	_, err := verifyExport(bytes.NewReader(data))
	assert.Error(t, err, "corrupted export must not verify")
}

func TestVerifyRejectsForeignFile(t *testing.T) {
	_, err := verifyExport(bytes.NewReader([]byte("definitely not an export")))
	assert.Error(t, err)
}
