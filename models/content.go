package models

// ContentData ist das Ergebnis der Extraktion einer einzelnen Seite.
// Sie wird einmal pro Analyse erzeugt und danach nicht mehr verändert.
type ContentData struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	MainContent string   `json:"main_content"`
	CodeBlocks  []string `json:"code_blocks"`
	HasCode     bool     `json:"has_code"`
	Author      string   `json:"author"`
	Date        string   `json:"date"`
}

// NewContentData setzt HasCode konsistent zu den gefundenen Code-Blöcken.
func NewContentData(url, title, mainContent string, codeBlocks []string, author, date string) *ContentData {
	if codeBlocks == nil {
		codeBlocks = []string{}
	}
	return &ContentData{
		URL:         url,
		Title:       title,
		MainContent: mainContent,
		CodeBlocks:  codeBlocks,
		HasCode:     len(codeBlocks) > 0,
		Author:      author,
		Date:        date,
	}
}
