// Package media models source videos whose probed properties are resolved
// once and then reused, and picks frame sample points for subject detection.
package media
