package sessionstore

import (
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/dmitrymomot/sessiongate/pkg/session"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("sessionstore: CBOR encoder initialization failed: " + err.Error())
	}

	// Unknown fields are ignored so older binaries can read newer records.
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sessionstore: CBOR decoder initialization failed: " + err.Error())
	}
}

// record is the persisted form of a session snapshot.
type record struct {
	ID         string    `cbor:"1,keyasint"`
	State      string    `cbor:"2,keyasint"`
	LastError  string    `cbor:"3,keyasint,omitempty"`
	RetryCount int       `cbor:"4,keyasint,omitempty"`
	UpdatedAt  time.Time `cbor:"5,keyasint"`
}

func encodeSnapshot(s session.Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(record{
		ID:         s.ID,
		State:      string(s.State),
		LastError:  s.LastError,
		RetryCount: s.RetryCount,
		UpdatedAt:  s.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, errors.Join(ErrEncodeRecord, err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (session.Snapshot, error) {
	var r record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return session.Snapshot{}, errors.Join(ErrDecodeRecord, err)
	}
	return session.Snapshot{
		ID:         r.ID,
		State:      session.State(r.State),
		LastError:  r.LastError,
		RetryCount: r.RetryCount,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}
