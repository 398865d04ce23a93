package rtc

import "github.com/pion/webrtc/v4"

const DefaultSTUN = "stun:stun.l.google.com:19302"

// ICEServers builds the ICE server list handed to peers. Media flows
// host<->guest directly; the coordinator only hands out this config.
func ICEServers(urls []string) []webrtc.ICEServer {
	if len(urls) == 0 {
		urls = []string{DefaultSTUN}
	}
	return []webrtc.ICEServer{{URLs: urls}}
}
