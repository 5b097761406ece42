package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"corduroy/internal/trail"
)

// Parse reads the conditions page HTML and extracts the report sections.
// Missing sections leave their fields zero rather than failing the parse:
// the page drops blocs outside the season.
func Parse(r io.Reader) (*Report, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse conditions html: %w", err)
	}

	rep := &Report{}

	if h1 := findByClass(doc, "h1", "date_encours"); h1 != nil {
		rep.Date = textContent(h1)
	}
	if hours := findByClass(doc, "div", "dash-horaire"); hours != nil {
		if span := findByClass(hours, "span", "heures"); span != nil {
			rep.HoursStatus = textContent(span)
		}
	}
	if maj := findByClass(doc, "div", "maj-time"); maj != nil {
		text := textContent(maj)
		text = strings.TrimSpace(strings.TrimPrefix(text, "Mise à jour le"))
		rep.LastUpdate = text
	}

	rep.Snow = parseSnow(findByID(doc, "dash-acc"))
	rep.Conditions = parseConditions(findByID(doc, "dash-conditions"))
	rep.Terrain = parseTerrain(findByID(doc, "dash-terrains"))
	rep.Trails = parseSection(findByID(doc, "recap-pistes"))
	rep.Glades = parseSection(findByID(doc, "recap-pistes-ssbois"))
	rep.SnowParks = parseFlatSection(findByID(doc, "recap-snowparks"))
	rep.Hiking = parseFlatSection(findByID(doc, "recap-alpine"))
	rep.Snowshoeing = parseFlatSection(findByID(doc, "recap-raquette"))
	rep.Lifts = parseSection(findByID(doc, "recap-remontes"))
	rep.Parking = parseSection(findByID(doc, "recap-stationnement"))

	return rep, nil
}

// parseConditions reads the surface-conditions bloc: label spans paired with
// the paragraph that follows each one.
func parseConditions(bloc *html.Node) map[string]string {
	if bloc == nil {
		return nil
	}
	labels := findAllByClass(bloc, "span", "txt-data-label")
	paragraphs := findAllByTag(bloc, "p")
	if len(labels) == 0 {
		return nil
	}
	conditions := make(map[string]string)
	for i, label := range labels {
		if i >= len(paragraphs) {
			break
		}
		conditions[strings.ToLower(textContent(label))] = textContent(paragraphs[i])
	}
	return conditions
}

// parseTerrain reads the terrain percentages from both progress rows.
func parseTerrain(bloc *html.Node) map[string]string {
	if bloc == nil {
		return nil
	}
	terrain := make(map[string]string)
	for _, group := range []string{"top-progress", "bottom-progress"} {
		row := findByClass(bloc, "div", group)
		if row == nil {
			continue
		}
		for _, block := range findAllByClass(row, "div", "progress-block") {
			title := findByClass(block, "span", "title-data-big")
			pct := findByClass(block, "span", "txt-data-big")
			if title == nil || pct == nil {
				continue
			}
			terrain[textContent(title)] = textContent(pct)
		}
	}
	if len(terrain) == 0 {
		return nil
	}
	return terrain
}

func parseSnow(bloc *html.Node) Snow {
	var snow Snow
	if bloc == nil {
		return snow
	}

	// Headline figure is the 24h accumulation.
	if metric := findByClass(bloc, "div", "data_metric"); metric != nil {
		snow.Last24h = textContent(metric)
	}

	// Remaining periods are list items with a label and a metric value.
	for _, item := range findAllByTag(bloc, "li") {
		label := findByClass(item, "span", "txt-data-label")
		metric := findByClass(item, "div", "data_metric")
		if label == nil || metric == nil {
			continue
		}
		value := textContent(metric)
		switch key := strings.ToLower(textContent(label)); {
		case strings.Contains(key, "48"):
			snow.Last48h = value
		case strings.Contains(key, "7"):
			snow.Last7Day = value
		case strings.Contains(key, "total") || strings.Contains(key, "saison"):
			snow.Total = value
		}
	}
	return snow
}

func parseSection(bloc *html.Node) Section {
	var section Section
	if bloc == nil {
		return section
	}

	section.Day, section.Night = parseSummary(findByClass(bloc, "div", "dash-resume"))

	detail := findByClass(bloc, "div", "dash-detail")
	if detail == nil {
		return section
	}
	for _, versant := range findAllByClass(detail, "div", "bloc_versant") {
		title := findByClass(versant, "span", "titre")
		if title == nil {
			continue
		}
		area := Area{Name: textContent(title)}
		for _, row := range findAllByClass(versant, "div", "liste") {
			record, ok := parseRow(row, area.Name)
			if !ok {
				continue
			}
			area.Trails = append(area.Trails, record)
		}
		section.Areas = append(section.Areas, area)
	}
	return section
}

// parseFlatSection reads a recap bloc whose rows sit directly under the
// detail div instead of per-versant blocks (snow parks, alpine hiking,
// snowshoeing). The rows land in a single unnamed area; a park's emplacement
// line, when present, becomes the record's area.
func parseFlatSection(bloc *html.Node) Section {
	var section Section
	if bloc == nil {
		return section
	}

	section.Day, section.Night = parseSummary(findByClass(bloc, "div", "dash-resume"))

	detail := findByClass(bloc, "div", "dash-detail")
	if detail == nil {
		return section
	}
	var area Area
	for _, row := range findAllByClass(detail, "div", "liste") {
		record, ok := parseRow(row, "")
		if !ok {
			continue
		}
		area.Trails = append(area.Trails, record)
	}
	if len(area.Trails) > 0 {
		section.Areas = append(section.Areas, area)
	}
	return section
}

func parseRow(row *html.Node, area string) (trail.Record, bool) {
	name := findByClass(row, "span", "nom")
	if name == nil {
		return trail.Record{}, false
	}
	record := trail.Record{
		Name: textContent(name),
		Area: area,
	}
	if numero := findByClass(row, "span", "numero"); numero != nil {
		record.Reference = textContent(numero)
	}
	if legend := findByClass(row, "span", "legende"); legend != nil {
		record.Difficulty = difficultyFromIcon(legend)
	}
	if day := findByClass(row, "span", "jour"); day != nil {
		record.DayStatus = textContent(day)
	}
	if night := findByClass(row, "span", "soir"); night != nil {
		record.NightStatus = textContent(night)
	}
	if loc := findByClass(row, "span", "emplacement"); loc != nil {
		record.Area = strings.TrimSpace(strings.TrimPrefix(textContent(loc), "Emplacement:"))
	}
	return record, true
}

func parseSummary(resume *html.Node) (day, night SummaryCount) {
	if resume == nil {
		return day, night
	}
	etats := findAllByClass(resume, "div", "etat")
	if len(etats) > 0 {
		day = summaryCount(etats[0])
	}
	if len(etats) > 1 {
		night = summaryCount(etats[1])
	}
	return day, night
}

func summaryCount(etat *html.Node) SummaryCount {
	var count SummaryCount
	if open := findByClass(etat, "span", "txt-data"); open != nil {
		count.Open = textContent(open)
	}
	if total := findByClass(etat, "span", "total"); total != nil {
		count.Total = strings.TrimPrefix(textContent(total), "/")
	}
	return count
}

// difficultyFromIcon pulls the difficulty slug off the legend icon, e.g.
// <i class="ico ico-facile"> yields "facile".
func difficultyFromIcon(legend *html.Node) string {
	icon := findByTag(legend, "i")
	if icon == nil {
		return ""
	}
	for _, class := range strings.Fields(attr(icon, "class")) {
		if rest, ok := strings.CutPrefix(class, "ico-"); ok && rest != "" {
			return rest
		}
	}
	return ""
}

// DOM helpers. x/net/html exposes a raw node tree, so these walk it the way
// a selector engine would for the handful of lookups the page needs.

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func findByTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func findByClass(root *html.Node, tag, class string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Data == tag && hasClass(n, class) {
			found = n
			return false
		}
		return true
	})
	return found
}

func findAllByClass(root *html.Node, tag, class string) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Data == tag && hasClass(n, class) {
			found = append(found, n)
		}
		return true
	})
	return found
}

func findAllByTag(root *html.Node, tag string) []*html.Node {
	var found []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Data == tag {
			found = append(found, n)
		}
		return true
	})
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
