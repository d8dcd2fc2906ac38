package router

import (
	"context"
	"fmt"

	"github.com/hinabot/hinabot/internal/boterr"
	"github.com/hinabot/hinabot/internal/search"
	"github.com/hinabot/hinabot/internal/ui"
)

func (r *Router) handleSearch(ctx context.Context, in *Interaction) error {
	event := in.Event()
	query := event.Option("query")
	searchType := event.Option("type")
	if searchType == "" {
		searchType = search.TypeWeb
	}

	results, err := r.searcher.Run(ctx, query, searchType)
	if err != nil {
		return err
	}
	return in.Resolve(ctx, r.renderSearchResults(results))
}

// handleSearchType re-runs the original query with the type picked from
// the select menu. The query rides inside the custom id.
func (r *Router) handleSearchType(ctx context.Context, in *Interaction) error {
	event := in.Event()
	id, err := ParseActionID(event.CustomID)
	if err != nil {
		return err
	}
	if len(id.Params) == 0 {
		return fmt.Errorf("%w: search query missing from custom id", boterr.ErrUnknownAction)
	}
	query, err := DecodeParam(id.Params[0])
	if err != nil {
		return err
	}
	if len(event.Values) == 0 {
		return fmt.Errorf("%w: no search type selected", boterr.ErrUnknownAction)
	}

	results, err := r.searcher.Run(ctx, query, event.Values[0])
	if err != nil {
		return err
	}
	return in.Resolve(ctx, r.renderSearchResults(results))
}

func (r *Router) renderSearchResults(results search.Results) Render {
	title := fmt.Sprintf("🔍 Results for “%s”", ui.Truncate(results.Query, 80))
	if len(results.Items) == 0 {
		return renderEmbed(ui.Warning("No results",
			fmt.Sprintf("Nothing matched “%s”. Try a different query or search type.", ui.Truncate(results.Query, 80))))
	}

	embed := ui.Info(title, "")
	for index, item := range results.Items {
		embed.Description += fmt.Sprintf("**%d. [%s](%s)**\n%s\n",
			index+1, ui.Truncate(item.Title, 90), item.Link, ui.Truncate(item.Snippet, 140))
	}
	embed.Footer = &ui.EmbedFooter{
		Text: fmt.Sprintf("%s results in %.2fs", results.TotalResults, results.SearchTime),
	}
	if results.Type == search.TypeImage && results.Items[0].Link != "" {
		embed.Image = &ui.EmbedImage{URL: results.Items[0].Link}
	} else if results.Items[0].Thumbnail != "" {
		embed.Thumbnail = &ui.EmbedImage{URL: results.Items[0].Thumbnail}
	}

	render := Render{Embeds: []ui.Embed{embed}}
	if customID, err := BuildActionID("search", "type", EncodeParam(results.Query)); err == nil {
		render.Components = []ui.ActionRow{ui.Row(ui.Select(customID, "Search again as…", searchTypeOptions(results.Type)))}
	}
	return render
}

func searchTypeOptions(selected string) []ui.SelectOption {
	labels := map[string]string{
		search.TypeWeb:      "Web",
		search.TypeImage:    "Images",
		search.TypeNews:     "News",
		search.TypeVideo:    "Videos",
		search.TypeDocument: "Documents",
	}
	var options []ui.SelectOption
	for _, searchType := range search.ValidTypes() {
		options = append(options, ui.SelectOption{
			Label:   labels[searchType],
			Value:   searchType,
			Default: searchType == selected,
		})
	}
	return options
}
