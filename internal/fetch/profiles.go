package fetch

// Profile is a browser-impersonating header set. Some hosts answer 401/403 to
// anything that does not look like a mainstream browser, so the generic-page
// strategy rotates through these before giving up.
type Profile struct {
	Name      string
	UserAgent string
	Extra     map[string]string
}

// Headers returns the full header map for the profile, merging the shared
// navigation headers with the profile-specific ones.
func (p Profile) Headers() map[string]string {
	h := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Referer":                   "https://www.google.com/",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "cross-site",
		"Sec-Fetch-User":            "?1",
	}
	if p.UserAgent != "" {
		h["User-Agent"] = p.UserAgent
	}
	for k, v := range p.Extra {
		h[k] = v
	}
	return h
}

// DefaultProfiles mirrors the fingerprints the pipeline rotates through:
// Chrome first, then Safari and Firefox for hosts that block it.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:      "chrome110",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36",
			Extra: map[string]string{
				"sec-ch-ua":          `"Not A;Brand";v="99", "Chromium";v="110", "Google Chrome";v="110"`,
				"sec-ch-ua-mobile":   "?0",
				"sec-ch-ua-platform": `"Windows"`,
			},
		},
		{
			Name:      "safari15_5",
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.5 Safari/605.1.15",
		},
		{
			Name:      "firefox107",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:107.0) Gecko/20100101 Firefox/107.0",
		},
	}
}
