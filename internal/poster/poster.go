// Package poster holds the content actions fired by the scheduler:
// posting the rotating athkar images with their replace lifecycle, and
// posting the daily Quran pages album.
package poster

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elsisiem/muthaker-bot/internal/models"
	"github.com/elsisiem/muthaker-bot/internal/quran"
)

// Messenger is the outbound messaging capability.
type Messenger interface {
	SendPhoto(ctx context.Context, chatID int64, imageURL, caption string) (int, error)
	SendAlbum(ctx context.Context, chatID int64, imageURLs []string, caption string) ([]int, error)
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// MessageRecord remembers the last posted message id per athkar kind.
type MessageRecord interface {
	Get(ctx context.Context, kind models.AthkarKind) (int, bool, error)
	Set(ctx context.Context, kind models.AthkarKind, messageID int) error
	Clear(ctx context.Context, kind models.AthkarKind) error
}

// PageMirror persists the legacy rotation counter after a successful
// Quran post. Optional; the anchor-based rotation never reads it.
type PageMirror interface {
	SetQuranPage(ctx context.Context, page int) error
}

var athkarImages = map[models.AthkarKind]string{
	models.AthkarMorning: "أذكار_الصباح.jpg",
	models.AthkarEvening: "أذكار_المساء.jpg",
}

type Poster struct {
	messenger Messenger
	record    MessageRecord
	mirror    PageMirror // may be nil

	// httpClient validates page images before posting; nil skips the check.
	httpClient *http.Client

	chatID     int64
	athkarURL  string
	quranURL   string
	retryDelay time.Duration
}

func New(messenger Messenger, record MessageRecord, mirror PageMirror, chatID int64, athkarURL, quranURL string) *Poster {
	return &Poster{
		messenger:  messenger,
		record:     record,
		mirror:     mirror,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		chatID:     chatID,
		athkarURL:  strings.TrimRight(athkarURL, "/"),
		quranURL:   strings.TrimRight(quranURL, "/"),
		retryDelay: 5 * time.Second,
	}
}

// PostAthkar posts the image for the kind, then deletes the previously
// recorded message of the opposite kind so at most one athkar message per
// kind stays in the channel. Deletion failures are logged, not retried.
func (p *Poster) PostAthkar(ctx context.Context, kind models.AthkarKind) error {
	imageURL := p.athkarURL + "/" + url.PathEscape(athkarImages[kind])

	messageID, err := p.messenger.SendPhoto(ctx, p.chatID, imageURL, "")
	if err != nil {
		log.Printf("Failed to send %s athkar, retrying once: %v", kind, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
		messageID, err = p.messenger.SendPhoto(ctx, p.chatID, imageURL, "")
		if err != nil {
			return fmt.Errorf("failed to send %s athkar: %w", kind, err)
		}
	}
	log.Printf("Sent %s athkar (msg_id=%d)", kind, messageID)

	opposite := kind.Opposite()
	oldID, found, err := p.record.Get(ctx, opposite)
	if err != nil {
		log.Printf("Failed to load previous %s athkar message id: %v", opposite, err)
	} else if found {
		if err := p.messenger.DeleteMessage(ctx, p.chatID, oldID); err != nil {
			log.Printf("Failed to delete previous %s athkar message %d: %v", opposite, oldID, err)
		} else {
			log.Printf("Deleted previous %s athkar message %d", opposite, oldID)
		}
		if err := p.record.Clear(ctx, opposite); err != nil {
			log.Printf("Failed to clear %s athkar record: %v", opposite, err)
		}
	}

	if err := p.record.Set(ctx, kind, messageID); err != nil {
		log.Printf("Failed to record %s athkar message id: %v", kind, err)
	}
	return nil
}

// PostQuranPages posts the two page images as one album with a caption.
// Both images are validated first; on any failure nothing is posted.
func (p *Poster) PostQuranPages(ctx context.Context, low, high int) error {
	if low < 1 || low > quran.TotalPages || high < 1 || high > quran.TotalPages {
		return fmt.Errorf("page pair (%d, %d) outside the mushaf", low, high)
	}

	urls := []string{p.pageURL(low), p.pageURL(high)}
	for _, imageURL := range urls {
		if err := p.checkImage(ctx, imageURL); err != nil {
			return fmt.Errorf("quran page not postable: %w", err)
		}
	}

	caption := fmt.Sprintf("ورد اليوم - الصفحات %d و %d", low, high)
	ids, err := p.messenger.SendAlbum(ctx, p.chatID, urls, caption)
	if err != nil {
		return fmt.Errorf("failed to send quran pages %d and %d: %w", low, high, err)
	}
	log.Printf("Sent quran pages %d and %d (%d messages)", low, high, len(ids))

	if p.mirror != nil {
		// Legacy counter semantics: store the page the next post starts at.
		next := low + 2
		if next > quran.TotalPages {
			next = 1
		}
		if err := p.mirror.SetQuranPage(ctx, next); err != nil {
			log.Printf("Failed to mirror quran page counter: %v", err)
		}
	}
	return nil
}

func (p *Poster) pageURL(page int) string {
	return fmt.Sprintf("%s/photo_%d.jpg", p.quranURL, page)
}

// checkImage verifies the resource is fetchable and is image content.
func (p *Poster) checkImage(ctx context.Context, imageURL string) error {
	if p.httpClient == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", imageURL, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", imageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%s is not an image (content type %q)", imageURL, ct)
	}
	return nil
}
