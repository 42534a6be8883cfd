package services

import (
	"context"
	"fmt"
	"log"

	"github.com/atlaspharma/atlas-api/internal/database"
	"github.com/atlaspharma/atlas-api/internal/models"
	"github.com/atlaspharma/atlas-api/internal/pipeline"
)

// AlertService evaluates new marketplace listings against alert-enabled
// watchlists and notifies the owners of matching saved searches.
type AlertService struct {
	db    *database.DB
	email *EmailService
}

// NewAlertService creates a new alert service instance
func NewAlertService(db *database.DB, email *EmailService) *AlertService {
	return &AlertService{db: db, email: email}
}

// NotifyNewListing runs every alert-enabled watchlist's criteria against a
// newly listed record. Failures are logged and never surfaced to the seller;
// listing a record must not depend on the notification path.
func (s *AlertService) NotifyNewListing(ctx context.Context, rec *models.InventoryRecord) {
	if !s.email.IsConfigured() {
		return
	}

	watchlists, err := s.db.ListAlertWatchlists(ctx)
	if err != nil {
		log.Printf("Warning: failed to load alert watchlists: %v", err)
		return
	}

	for _, wl := range watchlists {
		// Sellers don't need alerts about their own listings
		if wl.UserID == rec.SellerID {
			continue
		}

		result := pipeline.Apply([]models.InventoryRecord{*rec}, wl.Criteria, models.SortDefault)
		if len(result.Records) == 0 {
			continue
		}

		if err := s.sendMatchEmail(wl, rec); err != nil {
			log.Printf("Warning: failed to send watchlist alert for %q to user %d: %v", wl.Name, wl.UserID, err)
		}
	}
}

func (s *AlertService) sendMatchEmail(wl *models.AlertWatchlist, rec *models.InventoryRecord) error {
	subject := fmt.Sprintf("Atlas: new match for your watchlist %q", wl.Name)

	textBody := fmt.Sprintf(
		"A new listing matches your saved search %q:\n\n"+
			"  %s (%s)\n  Manufacturer: %s\n  NDC: %s\n  Quantity: %d\n  Unit price: %s\n  Expires: %s\n",
		wl.Name,
		rec.Pharmaceutical.BrandName, rec.Pharmaceutical.GenericName,
		rec.Pharmaceutical.Manufacturer, rec.Pharmaceutical.NDCCode,
		rec.Quantity, rec.UnitPrice, rec.ExpiryDate.Format("2006-01-02"),
	)

	htmlBody := fmt.Sprintf(
		`<p>A new listing matches your saved search <strong>%s</strong>:</p>
<ul>
  <li><strong>%s</strong> (%s)</li>
  <li>Manufacturer: %s</li>
  <li>NDC: %s</li>
  <li>Quantity: %d</li>
  <li>Unit price: %s</li>
  <li>Expires: %s</li>
</ul>`,
		wl.Name,
		rec.Pharmaceutical.BrandName, rec.Pharmaceutical.GenericName,
		rec.Pharmaceutical.Manufacturer, rec.Pharmaceutical.NDCCode,
		rec.Quantity, rec.UnitPrice, rec.ExpiryDate.Format("2006-01-02"),
	)

	return s.email.SendEmail(wl.OwnerEmail, subject, htmlBody, textBody)
}
