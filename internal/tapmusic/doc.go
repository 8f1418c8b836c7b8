// Package tapmusic knows how to talk to the tapmusic.net collage endpoint.
//
// The service renders a last.fm listening collage and answers a plain GET
// with the image bytes. This package only builds the request URL; fetching
// is done by the http package.
//
// # Building a URL
//
//	req, _ := model.NewCollageRequest("alice", "4", "7d", true, false)
//	u := tapmusic.BuildURL(tapmusic.DefaultBaseURL, req)
//	// https://tapmusic.net/collage.php?user=alice&type=7day&size=4x4&caption=true
//
// # Query Format
//
// Parameters are always emitted in the order user, type, size, caption,
// playcount. The service treats a missing caption or playcount as "off", so
// those two are only present when enabled and never carry "false".
package tapmusic
