package snapshot

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
)

const (
	// FileMagic opens every snapshot file ("RAYS" little-endian).
	FileMagic uint32 = 0x53594152

	// MaxAccounts bounds the entry count of a snapshot file.
	MaxAccounts = 1 << 20
	// MaxAccountData is the largest account the runtime allows.
	MaxAccountData = 10 << 20

	headerSize = 4 + 8 + 4
	// entryHeaderSize is pubkey, owner, lamports and dataLen.
	entryHeaderSize = 32 + 32 + 8 + 4
)

type fileEntry struct {
	key     solana.PublicKey
	account Account
}

func readEntry(r *layout.Reader) fileEntry {
	var e fileEntry
	e.key = r.PublicKey()
	e.account.Owner = r.PublicKey()
	e.account.Lamports = r.U64()
	n := r.U32()
	if n > MaxAccountData {
		r.Fail(fmt.Errorf("account data of %d bytes", n))
		return e
	}
	e.account.Data = r.Blob(int(n))
	return e
}

// Encode writes s in the snapshot file format. Accounts are written in
// key order, so equal snapshots encode to equal bytes.
func Encode(s *Snapshot) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := layout.NewWriter(binary.NewBinEncoder(buf))
	w.U32(FileMagic)
	w.U64(s.Slot)
	w.U32(uint32(s.Len()))
	for _, key := range s.Keys() {
		acc := s.accounts[key]
		if len(acc.Data) > MaxAccountData {
			return nil, fmt.Errorf("%w: account %s holds %d bytes", shared.ErrInvalidLayout, key, len(acc.Data))
		}
		w.PublicKey(key)
		w.PublicKey(acc.Owner)
		w.U64(acc.Lamports)
		w.U32(uint32(len(acc.Data)))
		w.Blob(acc.Data, len(acc.Data))
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a snapshot file.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: snapshot header needs %d bytes, got %d", shared.ErrInvalidLayout, headerSize, len(data))
	}
	decoder := binary.NewBinDecoder(data)
	r := layout.NewReader(decoder)
	magic := r.U32()
	slot := r.U64()
	count := r.U32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidLayout, err)
	}
	if magic != FileMagic {
		return nil, fmt.Errorf("%w: snapshot magic %#x", shared.ErrUnknownTag, magic)
	}

	entries, err := layout.ReadCountedSeq(decoder, uint64(count), MaxAccounts, entryHeaderSize, readEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidLayout, err)
	}
	if decoder.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", shared.ErrInvalidLayout, decoder.Remaining())
	}

	s := &Snapshot{Slot: slot, accounts: make(map[solana.PublicKey]*Account, len(entries))}
	for i := range entries {
		if _, dup := s.accounts[entries[i].key]; dup {
			return nil, fmt.Errorf("%w: duplicate account %s", shared.ErrInvalidLayout, entries[i].key)
		}
		acc := entries[i].account
		s.accounts[entries[i].key] = &acc
	}
	return s, nil
}

// WriteFile encodes s to path, creating its directory if needed.
func WriteFile(path string, s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile decodes the snapshot file at path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
