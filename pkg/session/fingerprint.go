package session

import (
	"hash"
	"strconv"

	"github.com/minio/highwayhash"

	"github.com/hrmigrate/hrmigrate/pkg/models"
)

var fingerprintKey = []byte("hrmigrate-session-fingerprint-k1")

const (
	unitSep   = 0x1f
	recordSep = 0x1e
	groupSep  = 0x1d
)

// Fingerprint hashes the canonical bytes of the tables and any extra parts.
// Nil tables hash differently from empty ones, so a removed source changes
// the fingerprint.
func Fingerprint(tables []*models.Table, extra ...string) (uint64, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, err
	}
	for _, t := range tables {
		writeTable(h, t)
	}
	for _, e := range extra {
		h.Write([]byte(e))
		h.Write([]byte{groupSep})
	}
	return h.Sum64(), nil
}

func writeTable(h hash.Hash, t *models.Table) {
	if t == nil {
		h.Write([]byte{0, groupSep})
		return
	}
	h.Write([]byte(t.Name))
	h.Write([]byte{recordSep})
	for _, c := range t.Columns {
		h.Write([]byte(c))
		h.Write([]byte{unitSep})
	}
	h.Write([]byte{recordSep})
	h.Write([]byte(strconv.Itoa(len(t.Rows))))
	for _, row := range t.Rows {
		for _, c := range t.Columns {
			h.Write([]byte(row[c]))
			h.Write([]byte{unitSep})
		}
		h.Write([]byte{recordSep})
	}
	h.Write([]byte{groupSep})
}
