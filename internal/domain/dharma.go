package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Dharma-specific validation errors
var (
	// ErrDharmaIDEmpty is returned when a dharma ID is empty or nil.
	ErrDharmaIDEmpty = errors.New("dharma ID cannot be empty")

	// ErrDharmaUserIDEmpty is returned when a dharma's user ID is empty or nil.
	ErrDharmaUserIDEmpty = errors.New("dharma user ID cannot be empty")

	// ErrDharmaNameEmpty is returned when a dharma name is empty.
	ErrDharmaNameEmpty = errors.New("dharma name cannot be empty")

	// ErrDharmaColorInvalid is returned when a color is not a #RRGGBB hex value.
	ErrDharmaColorInvalid = errors.New("dharma color must be a #RRGGBB hex value")
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Dharma groups a user's tasks. Its hidden flag cascades to the tasks it
// owns whenever it is toggled.
type Dharma struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDharma creates a new Dharma for the given user. When color is empty a
// random color is assigned. Returns an error if validation fails.
func NewDharma(userID uuid.UUID, name, color string) (*Dharma, error) {
	if color == "" {
		color = RandomColor()
	}

	now := time.Now().UTC()
	dharma := &Dharma{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := dharma.Validate(); err != nil {
		return nil, err
	}

	return dharma, nil
}

// Validate checks if the Dharma has valid data.
func (d *Dharma) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDharmaIDEmpty
	}

	if d.UserID == uuid.Nil {
		return ErrDharmaUserIDEmpty
	}

	if d.Name == "" {
		return ErrDharmaNameEmpty
	}

	if !hexColorPattern.MatchString(d.Color) {
		return ErrDharmaColorInvalid
	}

	return nil
}

// RandomColor returns a random #RRGGBB color for dharmas created without an
// explicit color.
func RandomColor() string {
	return fmt.Sprintf("#%02X%02X%02X", rand.Intn(256), rand.Intn(256), rand.Intn(256))
}
