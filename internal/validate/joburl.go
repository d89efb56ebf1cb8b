package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// jobSite is one allow-listed job board: the hostnames it answers on and the
// path shape a posting URL must have there.
type jobSite struct {
	Name        string
	Hosts       []string
	PathPattern *regexp.Regexp
}

// Allow-listed boards. Extraction is only attempted for URLs matching one of
// these; everything else is rejected before any network call.
var jobSites = []jobSite{
	{
		Name:        "HeadHunter",
		Hosts:       []string{"hh.ru", "www.hh.ru", "spb.hh.ru", "ekb.hh.ru"},
		PathPattern: regexp.MustCompile(`^/vacancy/\d+`),
	},
	{
		Name:        "SuperJob",
		Hosts:       []string{"superjob.ru", "www.superjob.ru"},
		PathPattern: regexp.MustCompile(`^/vakansii/.+\.html$`),
	},
	{
		Name:        "Habr Career",
		Hosts:       []string{"career.habr.com"},
		PathPattern: regexp.MustCompile(`^/vacancies/\d+`),
	},
	{
		Name:        "LinkedIn",
		Hosts:       []string{"linkedin.com", "www.linkedin.com"},
		PathPattern: regexp.MustCompile(`^/jobs/view/`),
	},
	{
		Name:        "Indeed",
		Hosts:       []string{"indeed.com", "www.indeed.com"},
		PathPattern: regexp.MustCompile(`^/viewjob$`),
	},
}

// JobURL checks a job posting URL against the board allow-list. It is a pure
// function of the URL's hostname and path and returns the matched site name
// on success.
func JobURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https")
	}

	host := strings.ToLower(parsed.Hostname())
	for _, site := range jobSites {
		for _, h := range site.Hosts {
			if host != h {
				continue
			}
			if !site.PathPattern.MatchString(parsed.Path) {
				return "", fmt.Errorf("%s URL does not look like a job posting", site.Name)
			}
			return site.Name, nil
		}
	}

	return "", fmt.Errorf("host %q is not a supported job board", host)
}
