package domain

import "fmt"

type RoomKind string

const (
	RoomGroup RoomKind = "group"
	RoomUser  RoomKind = "user"
)

// RoomKey идентифицирует чат-комнату: "group:<id>" либо "user:<min>_<max>".
type RoomKey struct {
	Kind       RoomKind
	Identifier string
}

func (k RoomKey) String() string {
	return string(k.Kind) + ":" + k.Identifier
}

func GroupRoom(groupID int64) (RoomKey, error) {
	if groupID <= 0 {
		return RoomKey{}, ErrInvalidTarget
	}
	return RoomKey{Kind: RoomGroup, Identifier: fmt.Sprintf("%d", groupID)}, nil
}

// PrivateRoom строит симметричный ключ: оба участника получают одну и ту же
// комнату независимо от того, кто открыл чат.
func PrivateRoom(selfID, otherID int64) (RoomKey, error) {
	if selfID <= 0 || otherID <= 0 || selfID == otherID {
		return RoomKey{}, ErrInvalidTarget
	}
	lo, hi := selfID, otherID
	if lo > hi {
		lo, hi = hi, lo
	}
	return RoomKey{Kind: RoomUser, Identifier: fmt.Sprintf("%d_%d", lo, hi)}, nil
}
