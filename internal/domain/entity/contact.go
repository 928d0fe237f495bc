package entity

import "fmt"

type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactInApp ContactMethod = "inapp"
)

func (m ContactMethod) Valid() bool {
	return m == ContactEmail || m == ContactPhone || m == ContactInApp
}

// Contact is one of Email(address), Phone(number) or InApp. The zero value is
// not a valid contact; build one with EmailContact, PhoneContact, InAppContact
// or NewContact.
type Contact struct {
	method ContactMethod
	info   string
}

func EmailContact(address string) Contact {
	return Contact{method: ContactEmail, info: address}
}

func PhoneContact(number string) Contact {
	return Contact{method: ContactPhone, info: number}
}

func InAppContact() Contact {
	return Contact{method: ContactInApp}
}

// NewContact builds a contact from the stored method/info pair. Info is
// dropped for in-app contact; email and phone require it.
func NewContact(method ContactMethod, info string) (Contact, error) {
	switch method {
	case ContactInApp:
		return InAppContact(), nil
	case ContactEmail, ContactPhone:
		if info == "" {
			return Contact{}, fmt.Errorf("contact info is required for %s contact", method)
		}
		return Contact{method: method, info: info}, nil
	default:
		return Contact{}, fmt.Errorf("unknown contact method %q", method)
	}
}

func (c Contact) Method() ContactMethod {
	return c.method
}

// Info returns the address or number, or nil for in-app contact.
func (c Contact) Info() *string {
	if c.method == ContactInApp || c.info == "" {
		return nil
	}
	info := c.info
	return &info
}

func (c Contact) IsZero() bool {
	return c.method == ""
}
