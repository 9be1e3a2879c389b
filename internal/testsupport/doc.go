// Package testsupport holds helpers shared by package tests: an isolated
// configuration rooted in a temp directory, shell-script stand-ins for
// ffmpeg/ffprobe, and file fillers.
package testsupport
