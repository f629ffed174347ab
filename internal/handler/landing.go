package handler

import "net/http"

// landingPage is served for every route the API does not define. The
// catch-all intentionally answers 200 so probes against unknown paths
// see the same page a browser does.
const landingPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Bookworm API</title>
</head>
<body>
  <h1>Bookworm</h1>
  <p>Discover great reads from the community.</p>
  <p>This is the Bookworm REST API. Use the mobile app or the CLI client to browse the feed.</p>
</body>
</html>
`

// HandleLanding serves the static fallback page.
func HandleLanding(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(landingPage))
}
