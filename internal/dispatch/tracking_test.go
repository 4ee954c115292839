package dispatch

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestAugmenter_Augment(t *testing.T) {
	deliveryID := uuid.New()
	participantID := uuid.New()
	a := NewAugmenter("https://track.example.com/")

	t.Run("link without query gets ?_track", func(t *testing.T) {
		body := `<a href="https://example.com/agenda">Agenda</a>`
		got := a.Augment(body, deliveryID, participantID)

		want := "https://example.com/agenda?_track=" + deliveryID.String()
		if !strings.Contains(got, want) {
			t.Errorf("augmented body missing %q:\n%s", want, got)
		}
	})

	t.Run("link with query gets &_track", func(t *testing.T) {
		body := `<a href="https://example.com/agenda?day=2">Agenda</a>`
		got := a.Augment(body, deliveryID, participantID)

		want := "https://example.com/agenda?day=2&_track=" + deliveryID.String()
		if !strings.Contains(got, want) {
			t.Errorf("augmented body missing %q:\n%s", want, got)
		}
	})

	t.Run("every link is rewritten", func(t *testing.T) {
		body := `<a href="https://a.example.com/x">one</a> <a href="http://b.example.com/y?q=1">two</a>`
		got := a.Augment(body, deliveryID, participantID)

		if n := strings.Count(got, "_track="+deliveryID.String()); n != 2 {
			t.Errorf("expected 2 tracked links, got %d:\n%s", n, got)
		}
	})

	t.Run("beacon appended after body", func(t *testing.T) {
		body := "<p>hello</p>"
		got := a.Augment(body, deliveryID, participantID)

		beacon := fmt.Sprintf(
			`<img src="https://track.example.com/t/open/%s?p=%s" width="1" height="1" alt="" style="display:none"/>`,
			deliveryID, participantID,
		)
		if !strings.HasSuffix(got, beacon) {
			t.Errorf("body does not end with beacon:\n%s", got)
		}
		if !strings.HasPrefix(got, body) {
			t.Errorf("original body was altered:\n%s", got)
		}
	})

	t.Run("beacon URL not self-tracked", func(t *testing.T) {
		body := "<p>no links</p>"
		got := a.Augment(body, deliveryID, participantID)

		// The beacon is appended after link rewriting, so its own URL
		// never picks up a _track parameter.
		if strings.Count(got, "_track=") != 0 {
			t.Errorf("beacon URL must not carry a _track parameter:\n%s", got)
		}
	})
}
