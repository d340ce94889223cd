// Package export serializes contact lists for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sendloop/sendloop/internal/domain"
)

// csvHeader is the fixed column order of a contact export.
var csvHeader = []string{"name", "phone", "email", "whatsappOptIn", "tags", "notes", "createdAt", "lastMessageAt"}

// ContactsCSV renders contacts as CSV: one header row plus one row per
// contact. Tags are comma-joined, timestamps are date-only ISO, and a nil
// lastMessageAt becomes an empty cell.
func ContactsCSV(contacts []*domain.Contact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export.ContactsCSV: header: %w", err)
	}

	for _, c := range contacts {
		lastMessage := ""
		if c.LastMessageAt != nil {
			lastMessage = c.LastMessageAt.Format(time.DateOnly)
		}

		row := []string{
			c.Name,
			c.Phone,
			c.Email,
			strconv.FormatBool(c.WhatsAppOptIn),
			strings.Join(c.Tags, ","),
			c.Notes,
			c.CreatedAt.Format(time.DateOnly),
			lastMessage,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export.ContactsCSV: row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export.ContactsCSV: flush: %w", err)
	}

	return buf.Bytes(), nil
}

// Filename builds the suggested download name, embedding the given date.
func Filename(now time.Time) string {
	return "contacts-" + now.Format(time.DateOnly) + ".csv"
}
