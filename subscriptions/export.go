package subscriptions

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/burrowblog/burrow/models"
)

// WriteCSV writes the subscriber list as CSV with a header row.
func WriteCSV(w io.Writer, subscribers []*models.Subscriber) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"email_address", "subscribed_date"}); err != nil {
		return err
	}
	for _, subscriber := range subscribers {
		record := []string{subscriber.EmailAddress, subscriber.SubscribedAt.Format(time.RFC3339)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteText writes one address per line.
func WriteText(w io.Writer, subscribers []*models.Subscriber) error {
	for _, subscriber := range subscribers {
		if _, err := fmt.Fprintln(w, subscriber.EmailAddress); err != nil {
			return err
		}
	}
	return nil
}
