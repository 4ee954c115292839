package dispatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// linkPattern matches http(s) URLs inside an HTML body. Quote characters
// and angle brackets terminate a URL so attribute values stay intact.
var linkPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// Augmenter rewrites a rendered body so that opens and clicks can be
// correlated back to a delivery record. It must only run on rendered
// bodies, after a delivery record exists.
type Augmenter struct {
	baseURL string
}

// NewAugmenter creates a tracking augmenter. baseURL is the public address
// of the tracking service, without a trailing slash.
func NewAugmenter(baseURL string) *Augmenter {
	return &Augmenter{baseURL: strings.TrimRight(baseURL, "/")}
}

// Augment appends a _track query parameter carrying the delivery id to
// every link in body, then appends a single invisible open-tracking beacon
// whose URL encodes the delivery and participant ids.
func (a *Augmenter) Augment(body string, deliveryID, participantID uuid.UUID) string {
	tracked := linkPattern.ReplaceAllStringFunc(body, func(link string) string {
		sep := "?"
		if strings.Contains(link, "?") {
			sep = "&"
		}
		return link + sep + "_track=" + deliveryID.String()
	})

	return tracked + a.beacon(deliveryID, participantID)
}

// beacon builds the zero-size open-tracking image reference
func (a *Augmenter) beacon(deliveryID, participantID uuid.UUID) string {
	return fmt.Sprintf(
		`<img src="%s/t/open/%s?p=%s" width="1" height="1" alt="" style="display:none"/>`,
		a.baseURL, deliveryID, participantID,
	)
}
