package wiki

import (
	"context"
	"net/url"
	"strconv"
)

// Namespaces used by csv2wiki.
const (
	NamespaceMain     = 0
	NamespaceCategory = 14
)

// PageInfo describes a page as listed by list=allpages.
type PageInfo struct {
	ID        int    `json:"pageid"`
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

// Move renames from to to, together with its talk page, leaving a redirect
// behind.
func (c *Client) Move(ctx context.Context, from, to, reason string) error {
	params := url.Values{
		"action":   {"move"},
		"from":     {from},
		"to":       {to},
		"movetalk": {"1"},
	}
	if reason != "" {
		params.Set("reason", reason)
	}
	if err := c.write(ctx, params, nil); err != nil {
		return err
	}
	c.logger.Debug("moved page", "from", from, "to", to)
	return nil
}

// Delete removes title from the wiki.
func (c *Client) Delete(ctx context.Context, title, reason string) error {
	params := url.Values{
		"action": {"delete"},
		"title":  {title},
	}
	if reason != "" {
		params.Set("reason", reason)
	}
	if err := c.write(ctx, params, nil); err != nil {
		return err
	}
	c.logger.Debug("deleted page", "title", title)
	return nil
}

// PrefixSearch lists the titles in namespace that start with prefix,
// following API continuation until the list is exhausted.
func (c *Client) PrefixSearch(ctx context.Context, namespace int, prefix string) ([]string, error) {
	var titles []string
	cont := url.Values{}

	for {
		params := url.Values{
			"action":      {"query"},
			"list":        {"allpages"},
			"apprefix":    {prefix},
			"apnamespace": {strconv.Itoa(namespace)},
			"aplimit":     {"max"},
		}
		for k, v := range cont {
			params[k] = v
		}

		var resp struct {
			Continue map[string]string `json:"continue"`
			Query    struct {
				AllPages []PageInfo `json:"allpages"`
			} `json:"query"`
		}
		if err := c.get(ctx, params, &resp); err != nil {
			return titles, err
		}
		for _, p := range resp.Query.AllPages {
			titles = append(titles, p.Title)
		}

		if len(resp.Continue) == 0 {
			return titles, nil
		}
		cont = url.Values{}
		for k, v := range resp.Continue {
			cont.Set(k, v)
		}
	}
}
