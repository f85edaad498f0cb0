package biscuit

import "testing"

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("BISCUIT_BROWSERS", "firefox, chrome")
	t.Setenv("BISCUIT_LINUX_KEYRING", "kwallet")
	t.Setenv("BISCUIT_CHROME_SAFE_STORAGE_PASSWORD", "hunter2")

	opts := OptionsFromEnv(Options{})
	if len(opts.Browsers) != 2 || opts.Browsers[0] != BrowserFirefox || opts.Browsers[1] != BrowserChrome {
		t.Fatalf("unexpected browser order: %v", opts.Browsers)
	}
	if opts.LinuxKeyring != "kwallet" {
		t.Fatalf("unexpected keyring: %q", opts.LinuxKeyring)
	}
	if opts.SafeStoragePasswords[BrowserChrome] != "hunter2" {
		t.Fatalf("unexpected password map: %v", opts.SafeStoragePasswords)
	}
}

func TestOptionsFromEnv_ExplicitFieldsWin(t *testing.T) {
	t.Setenv("BISCUIT_BROWSERS", "firefox")
	t.Setenv("BISCUIT_LINUX_KEYRING", "kwallet")
	t.Setenv("BISCUIT_CHROME_SAFE_STORAGE_PASSWORD", "env")

	opts := OptionsFromEnv(Options{
		Browsers:             []Browser{BrowserSafari},
		LinuxKeyring:         "gnome",
		SafeStoragePasswords: map[Browser]string{BrowserChrome: "explicit"},
	})
	if len(opts.Browsers) != 1 || opts.Browsers[0] != BrowserSafari {
		t.Fatalf("explicit browsers overridden: %v", opts.Browsers)
	}
	if opts.LinuxKeyring != "gnome" {
		t.Fatalf("explicit keyring overridden: %q", opts.LinuxKeyring)
	}
	if opts.SafeStoragePasswords[BrowserChrome] != "explicit" {
		t.Fatalf("explicit password overridden: %v", opts.SafeStoragePasswords)
	}
}
