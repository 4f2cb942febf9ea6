package host

import (
	"fmt"

	"certa/internal/config"
	"certa/pkg/appapi"
	"certa/pkg/ui"
)

const sessionExpiredText = "Your session has expired or the token was rejected.\n\nSelect an account to sign in again."

// Accounts lists the KeePass accounts of the enabled environments.
func (h *Host) Accounts() ([]config.Account, error) {
	if h.secrets == nil {
		return nil, nil
	}
	return config.DiscoverAccounts(h.secrets, h.cfg)
}

// ConnectInitial picks the startup connection: the selector (flag or
// config), then the configured API URL, then the only account. With
// several accounts and nothing selected the account selector opens.
func (h *Host) ConnectInitial(selector string) error {
	if selector == "" {
		selector = h.cfg.Account
	}
	accounts, err := h.Accounts()
	if err != nil {
		appapi.Log().Warn("discover accounts: %v", err)
	}

	if selector != "" {
		acct, ok := config.FindAccount(accounts, selector)
		if !ok {
			return fmt.Errorf("account %q not found", selector)
		}
		return h.Connect(&acct)
	}
	if h.cfg.API.URL != "" {
		return h.Connect(nil)
	}
	switch len(accounts) {
	case 0:
		return nil
	case 1:
		return h.Connect(&accounts[0])
	}
	h.ShowAccounts()
	return nil
}

// ShowAccounts opens the account selector and connects to the choice.
func (h *Host) ShowAccounts() {
	accounts, err := h.Accounts()
	if err != nil {
		ui.ShowStandardErrorModal(h.Pages, h.App, "Accounts", err.Error(), h.focusList)
		return
	}
	if len(accounts) == 0 {
		ui.ShowInfoModal(h.Pages, h.App, "Accounts", noAccountsText(), h.focusList)
		return
	}

	items := make([][]string, len(accounts))
	for i, a := range accounts {
		items[i] = []string{a.Label(), a.URL}
	}
	ui.ShowStandardListSelectorModal(h.Pages, h.App, "Select Account", items, func(index int, _ string, cancelled bool) {
		defer h.focusList()
		if cancelled || index < 0 || index >= len(accounts) {
			return
		}
		acct := accounts[index]
		if err := h.Connect(&acct); err != nil {
			ui.ShowStandardErrorModal(h.Pages, h.App, "Connect failed", err.Error(), h.focusList)
		}
	})
}

func noAccountsText() string {
	return fmt.Sprintf("No backend accounts found.\n\n"+
		"Add an entry under [yellow]%s/<environment>/<name>[white] in the KeePass database:\n\n"+
		"  URL      API base URL\n  Password API token\n\n"+
		"or set [yellow]%s[white] and [yellow]%s[white].",
		config.SecretsSection, config.EnvAPIURL, config.EnvAPIToken)
}

// sessionExpired runs on the request goroutine for every 401. Only the
// first one of a burst prompts.
func (h *Host) sessionExpired() {
	if !h.expired.CompareAndSwap(false, true) {
		return
	}
	appapi.Log().Warn("session expired for %s", h.workspaceLabel())
	h.App.QueueUpdateDraw(func() {
		h.Header.SetStatus("Session expired")
		ui.ShowStandardErrorModal(h.Pages, h.App, "Session expired", sessionExpiredText, func() {
			h.expired.Store(false)
			h.ShowAccounts()
		})
	})
}

func (h *Host) workspaceLabel() string {
	if h.Workspace == nil {
		return "no account"
	}
	return h.Workspace.Label()
}

func (h *Host) focusList() {
	h.App.SetFocus(h.FeatureList)
}
