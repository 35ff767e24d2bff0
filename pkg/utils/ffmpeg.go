package utils

import "os/exec"

// CheckFFmpeg reports whether an ffmpeg binary is reachable via PATH.
func CheckFFmpeg() bool {
	cmd := exec.Command("ffmpeg", "-version")
	err := cmd.Run()
	return err == nil
}

// CheckFFprobe reports whether an ffprobe binary is reachable via PATH.
// Both tools ship together, but a broken install can have one without the
// other.
func CheckFFprobe() bool {
	cmd := exec.Command("ffprobe", "-version")
	err := cmd.Run()
	return err == nil
}
