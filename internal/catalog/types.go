package catalog

import (
	"strings"
	"unicode"

	"github.com/gestfood/digital-menu/pkg/enums"
)

// Client is a registered restaurant customer.
type Client struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CPF         string `json:"cpf"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// Desk is a table that a client can be seated at.
type Desk struct {
	ID       string `json:"id,omitempty"`
	DeskCode string `json:"deskCode"`
	Seats    int    `json:"seats,omitempty"`
}

// Employee is a back-office staff member.
type Employee struct {
	ID       string             `json:"id,omitempty"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password,omitempty"`
	CPF      string             `json:"cpf"`
	Role     enums.EmployeeRole `json:"role"`
}

// DigitsOnly strips every non-digit rune, used to compare CPF and phone values
// regardless of formatting.
func DigitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, value)
}

// FindClientByCPF matches on digits only.
func FindClientByCPF(clients []Client, cpf string) (Client, bool) {
	want := DigitsOnly(cpf)
	if want == "" {
		return Client{}, false
	}
	for _, client := range clients {
		if DigitsOnly(client.CPF) == want {
			return client, true
		}
	}
	return Client{}, false
}

// FindClientByEmail matches case-insensitively.
func FindClientByEmail(clients []Client, email string) (Client, bool) {
	want := strings.TrimSpace(email)
	if want == "" {
		return Client{}, false
	}
	for _, client := range clients {
		if strings.EqualFold(strings.TrimSpace(client.Email), want) {
			return client, true
		}
	}
	return Client{}, false
}

// FindDesk returns the desk with the given id.
func FindDesk(desks []Desk, id string) (Desk, bool) {
	for _, desk := range desks {
		if desk.ID == id {
			return desk, true
		}
	}
	return Desk{}, false
}
