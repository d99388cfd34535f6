package search

import "math/rand"

// Desktop user agents rotated on direct HTTP requests (sitemap fetches,
// HEAD probes, homepage scans) to reduce trivial bot blocking. The search
// API itself authenticates with a key and does not need one.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.5112.79 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

// RandomUserAgent returns one of the known desktop user-agent strings.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
