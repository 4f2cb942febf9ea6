package ui

import "fmt"

// SetRefreshCallback sets what R triggers. The callback must not block;
// it starts the load and reports back through SetLoading.
func (c *CoreView) SetRefreshCallback(callback func()) *CoreView {
	c.onRefresh = callback
	return c
}

// RefreshData runs the refresh callback unless a load is in progress.
func (c *CoreView) RefreshData() *CoreView {
	c.dataMutex.Lock()
	loading := c.isLoading
	c.dataMutex.Unlock()
	if loading {
		c.Log("[yellow]Loading in progress...")
		return c
	}
	if c.onRefresh != nil {
		c.onRefresh()
	}
	return c
}

// SetLoading records the load state and updates the table title.
func (c *CoreView) SetLoading(loading bool) *CoreView {
	c.dataMutex.Lock()
	c.isLoading = loading
	c.dataMutex.Unlock()
	if loading {
		c.table.SetTitle(fmt.Sprintf(" [yellow]%s[white] [gray](loading...)[white] ", c.title))
	} else if c.filterQuery == "" {
		c.table.SetTitle(fmt.Sprintf(" [yellow]%s[white] ", c.title))
	}
	return c
}

// IsLoading reports the last SetLoading value.
func (c *CoreView) IsLoading() bool {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()
	return c.isLoading
}
