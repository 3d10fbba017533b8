package browser

// LaunchConfig is one way of starting a browser
type LaunchConfig struct {
	Name string
	// Flags are Chrome command-line switches applied on top of chromedp's defaults.
	Flags map[string]interface{}
	// RemoteURL connects to an already running browser instead of starting one.
	// Both http(s) DevTools endpoints and ws(s) debugger URLs are accepted.
	RemoteURL string
}

// Remote reports whether the configuration attaches to an existing browser
func (c LaunchConfig) Remote() bool {
	return c.RemoteURL != ""
}

// DefaultLaunchConfigs returns the local launch configurations in the order they are
// tried. All of them hide the automation flag; they differ in sandboxing, shared
// memory and web security so that at least one starts in constrained containers.
func DefaultLaunchConfigs() []LaunchConfig {
	return []LaunchConfig{
		{
			Name: "stealth",
			Flags: map[string]interface{}{
				"no-sandbox":             true,
				"disable-setuid-sandbox": true,
				"disable-blink-features": "AutomationControlled",
				"disable-web-security":   true,
				"disable-features":       "VizDisplayCompositor",
				"enable-automation":      false,
			},
		},
		{
			Name: "no-shm",
			Flags: map[string]interface{}{
				"no-sandbox":             true,
				"disable-setuid-sandbox": true,
				"disable-dev-shm-usage":  true,
				"disable-blink-features": "AutomationControlled",
				"enable-automation":      false,
			},
		},
		{
			Name: "no-shm-insecure",
			Flags: map[string]interface{}{
				"no-sandbox":             true,
				"disable-setuid-sandbox": true,
				"disable-dev-shm-usage":  true,
				"disable-blink-features": "AutomationControlled",
				"disable-web-security":   true,
				"enable-automation":      false,
			},
		},
	}
}

// RemoteLaunchConfig returns a configuration attaching to the browser at url
func RemoteLaunchConfig(url string) LaunchConfig {
	return LaunchConfig{Name: "remote", RemoteURL: url}
}
