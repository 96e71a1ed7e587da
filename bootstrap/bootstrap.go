package bootstrap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/SRBConsultingTeam/ui5-quality-checks/version"
)

// DefaultHosts are the UI5 CDN hosts in matching priority order.
var DefaultHosts = []string{
	"sapui5.hana.ondemand.com",
	"ui5.sap.com",
}

type Extractor struct {
	hosts    []string
	patterns []*regexp.Regexp
}

// NewExtractor builds an extractor for the given CDN hosts. Without hosts
// the DefaultHosts are used.
func NewExtractor(hosts ...string) *Extractor {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	e := &Extractor{hosts: hosts}
	for _, host := range hosts {
		// e.g. https://ui5.sap.com/1.120.4/resources/sap-ui-core.js
		e.patterns = append(e.patterns, regexp.MustCompile(fmt.Sprintf(`//%s/([^/?#]*)/resources(?:/|$)`, regexp.QuoteMeta(host))))
	}
	return e
}

func (e *Extractor) Hosts() []string {
	return append([]string(nil), e.hosts...)
}

// Extract reads the UI5 version pinned by the script tags in the head of an
// HTML bootstrap file. When several tags pin a version the last one wins.
func (e *Extractor) Extract(content string) (version.Detected, error) {
	r, err := charset.NewReader(strings.NewReader(content), "text/html")
	if err != nil {
		return version.Detected{}, xerrors.Errorf("unable to decode bootstrap file: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return version.Detected{}, xerrors.Errorf("failed to parse bootstrap file: %w", err)
	}

	var versionString string
	doc.Find("head script[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if v, ok := e.match(strings.TrimSpace(src)); ok {
			versionString = v
		}
	})

	if versionString == "" {
		return version.Detected{Version: version.NewUnpinned(), MinVersionOnly: true}, nil
	}
	return version.Detected{Version: version.Classify(versionString)}, nil
}

func (e *Extractor) match(src string) (string, bool) {
	for _, p := range e.patterns {
		m := p.FindStringSubmatch(src)
		if m == nil {
			continue
		}
		if version.LooksLikeVersion(m[1]) {
			return m[1], true
		}
	}
	return "", false
}
