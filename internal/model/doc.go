// Package model defines the core data structures used throughout
// the tapmusic-collage application.
//
// # CollageRequest
//
// CollageRequest is the validated form of the CLI input:
//
//	req, err := model.NewCollageRequest("alice", "4", "7d", true, false)
//	fmt.Println(req.Size.Grid())      // "4x4"
//	fmt.Println(req.Period.Token())   // "7day"
//
// Size and Period are closed enumerations. Parsing anything outside them
// fails with an *InvalidArgumentError, which matches ErrInvalidArgument.
//
// # OutputTarget
//
// ResolveTarget computes where the collage is saved:
//
//	target, err := model.ResolveTarget("/tmp", req, "", time.Now(), nil)
//	fmt.Println(target.Path()) // "/tmp/alice_7day_4x4_2024-03-01_142501.jpg"
//
// Available placeholders for generated names: {user}, {period}, {size}, {timestamp}
package model
