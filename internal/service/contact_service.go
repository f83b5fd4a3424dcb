package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/practice-booking/internal/metrics"
	"github.com/iliyamo/practice-booking/internal/model"
)

// ContactStore persists contact submissions.  *repository.ContactRepo
// implements it.
type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	List(ctx context.Context, limit int) ([]model.Contact, error)
}

// ContactNotifier tells the practice about a new submission.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, c model.Contact) error
}

// ContactService stores contact form submissions and forwards them.
type ContactService struct {
	store    ContactStore
	notifier ContactNotifier
	log      zerolog.Logger
}

// NewContactService wires a ContactService.  notifier may be nil.
func NewContactService(store ContactStore, notifier ContactNotifier, log zerolog.Logger) *ContactService {
	return &ContactService{
		store:    store,
		notifier: notifier,
		log:      log.With().Str("component", "contacts").Logger(),
	}
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Email     string   `json:"email" validate:"omitempty,email,max=254"`
	Phone     string   `json:"phone" validate:"required,max=50"`
	Languages []string `json:"languages" validate:"required,min=1,max=10,dive,required,max=50"`
	Message   string   `json:"message" validate:"required,max=5000"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	for i, l := range in.Languages {
		in.Languages[i] = strings.TrimSpace(l)
	}
}

// Submit validates and stores the submission, then notifies the practice.
// A notification failure is logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*model.Contact, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		metrics.IncContactEvent("invalid")
		return nil, err
	}

	c := &model.Contact{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Languages: in.Languages,
		Message:   in.Message,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("save contact: %w", err)
	}
	metrics.IncContactEvent("submitted")
	s.log.Info().Str("contact_id", c.ID).Strs("languages", c.Languages).Msg("contact submitted")

	if s.notifier != nil {
		if err := s.notifier.NotifyContact(ctx, *c); err != nil {
			metrics.IncContactEvent("notify_failed")
			s.log.Warn().Err(err).Str("contact_id", c.ID).Msg("contact notification failed")
		}
	}
	return c, nil
}

// List returns up to limit contacts, newest first; limit <= 0 means all.
func (s *ContactService) List(ctx context.Context, limit int) ([]model.Contact, error) {
	contacts, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

const contactsSheet = "Contacts"

var contactHeaders = []string{"Received", "Name", "Email", "Phone", "Languages", "Message"}

// ExportXLSX writes every contact to w as an Excel workbook with one row
// per submission, newest first.
func (s *ContactService) ExportXLSX(ctx context.Context, w io.Writer) error {
	contacts, err := s.List(ctx, 0)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", contactsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range contactHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(contactsSheet, cell, h)
		_ = f.SetCellStyle(contactsSheet, cell, cell, header)
	}
	_ = f.SetColWidth(contactsSheet, "A", "A", 20)
	_ = f.SetColWidth(contactsSheet, "B", "E", 24)
	_ = f.SetColWidth(contactsSheet, "F", "F", 60)

	for i, c := range contacts {
		row := []any{
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			c.Name,
			c.Email,
			c.Phone,
			strings.Join(c.Languages, ", "),
			c.Message,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(contactsSheet, cell, &row); err != nil {
			return fmt.Errorf("write contact row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	metrics.IncContactEvent("exported")
	return nil
}
