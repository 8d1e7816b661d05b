package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pms-sync/core/guesty"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// AnonymousName is used when the vendor document carries no usable name.
const AnonymousName = "Anonymous Customer"

// UnknownCity is stored when the guest hometown carries no city.
const UnknownCity = "ND"

var titleCaser = cases.Title(language.English)

// Service resolves remote guests into local contacts and pushes local
// contacts back to the vendor when an outbound reservation needs one.
type Service struct {
	db             *gorm.DB
	client         guesty.Client
	logger         *zap.Logger
	defaultCountry string
}

// NewService creates a new guest service.
func NewService(db *gorm.DB, client guesty.Client, logger *zap.Logger, defaultCountry string) *Service {
	return &Service{db: db, client: client, logger: logger, defaultCountry: defaultCountry}
}

// Resolve returns the local contact for a remote guest id, fetching the
// guest from the vendor and creating the contact on first sight.
func (s *Service) Resolve(ctx context.Context, externalID string) (*Contact, error) {
	if externalID == "" {
		return s.anonymous(ctx)
	}

	var mapping Mapping
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&mapping).Error
	if err == nil {
		var contact Contact
		if err := s.db.WithContext(ctx).First(&contact, mapping.ContactID).Error; err != nil {
			return nil, err
		}
		return &contact, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	res, err := s.client.Get(ctx, "guests/"+externalID, nil, guesty.GetOptions{})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		s.logger.Warn("Guest lookup failed, storing anonymous contact",
			zap.String("guest", externalID), zap.Int("status", res.Status))
		return s.anonymous(ctx)
	}

	var remote remoteGuest
	if err := json.Unmarshal(res.Body, &remote); err != nil {
		return nil, err
	}

	contact := s.contactFromRemote(remote)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&contact).Error; err != nil {
			return err
		}
		return tx.Create(&Mapping{ExternalID: externalID, ContactID: contact.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// EnsureRemote returns the remote guest id for a contact, creating the guest
// on the vendor side on first push.
func (s *Service) EnsureRemote(ctx context.Context, contact *Contact) (string, error) {
	var mapping Mapping
	err := s.db.WithContext(ctx).Where("contact_id = ?", contact.ID).First(&mapping).Error
	if err == nil {
		return mapping.ExternalID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	first, last := splitName(contact.Name)
	res, err := s.client.Post(ctx, "guests", map[string]any{
		"firstName": first,
		"lastName":  last,
		"email":     contact.Email,
		"phone":     contact.Phone,
	})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("guest push: vendor returned %d", res.Status)
	}

	var created struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(res.Body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("guest push: response carries no _id")
	}

	err = s.db.WithContext(ctx).Create(&Mapping{ExternalID: created.ID, ContactID: contact.ID}).Error
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// contactFromRemote builds a Contact following the vendor's loose name and
// hometown conventions.
func (s *Service) contactFromRemote(remote remoteGuest) Contact {
	name := strings.TrimSpace(remote.FullName)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(remote.FirstName) + " " + strings.TrimSpace(remote.LastName))
	}
	if name == "" {
		name = AnonymousName
	}

	city, country := splitHometown(remote.Hometown, s.defaultCountry)

	return Contact{
		Name:    name,
		Email:   remote.Email,
		Phone:   remote.Phone,
		City:    city,
		Country: country,
	}
}

// anonymous returns a fresh anonymous contact, not linked to any mapping.
func (s *Service) anonymous(ctx context.Context) (*Contact, error) {
	contact := Contact{
		Name:    AnonymousName,
		City:    UnknownCity,
		Country: s.defaultCountry,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// splitHometown parses the vendor's "City, Country" convention. A trailing
// part that names no known country, a guest middle name for instance, falls
// back to the default instead of being stored as one.
func splitHometown(hometown, defaultCountry string) (string, string) {
	city, country, found := strings.Cut(hometown, ", ")
	city = strings.TrimSpace(city)
	if city == "" {
		city = UnknownCity
	}
	if !found {
		return city, defaultCountry
	}
	if canonical, ok := matchCountry(country); ok {
		return city, canonical
	}
	return city, defaultCountry
}

// splitName divides a display name into the first/last pair the vendor wants.
func splitName(name string) (string, string) {
	first, last, found := strings.Cut(strings.TrimSpace(name), " ")
	if !found {
		return first, ""
	}
	return first, last
}
