// Package browser manages the headless Chrome session used to load event pages.
//
// A Manager tries a ranked list of launch configurations until one starts, then
// patches the page so common automation checks (navigator.webdriver, plugin and
// language lists, the automation flag) see an ordinary desktop browser. The returned
// Page must be closed by the caller; closing tears down the tab, the browser process
// and the allocator.
package browser
