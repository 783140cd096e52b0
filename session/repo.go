package session

// Vault is the durable client-side storage behind the session store. It owns
// exactly two independent slots: the opaque token and the serialized user.
// Absence of a slot is reported as internal/errors.ErrSlotNotFound.
// Nothing outside the session store touches these slots.
type Vault interface {
	ReadToken() (string, error)
	WriteToken(token string) error
	DeleteToken() error
	ReadUser() ([]byte, error)
	WriteUser(raw []byte) error
	DeleteUser() error
}
