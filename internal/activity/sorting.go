package activity

import (
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/prng"
	"github.com/SAP-F-2025/activity-service/internal/sections"
)

// sides describes one two-way sorting layout: the label keys and the item
// section that feeds each side.
type sides struct {
	keys  [2]string
	items [2]sections.Name
}

var (
	boxSides = sides{
		keys:  [2]string{models.SideFirst, models.SideSecond},
		items: [2]sections.Name{sections.NameFirstBoxItems, sections.NameSecondBoxItems},
	}
	swipeSides = sides{
		keys:  [2]string{models.SideLeft, models.SideRight},
		items: [2]sections.Name{sections.NameLeftLabelItems, sections.NameRightLabelItems},
	}
)

func (c *Compiler) buildSortIntoBoxes(src *source) (*models.Activity, error) {
	return c.buildTwoWay(src, boxSides), nil
}

func (c *Compiler) buildSwipeLeftRight(src *source) (*models.Activity, error) {
	return c.buildTwoWay(src, swipeSides), nil
}

func (c *Compiler) buildTwoWay(src *source, layout sides) *models.Activity {
	items := []models.SortItem{}
	for i, name := range layout.items {
		for _, text := range src.doc.Get(name).Items() {
			if text = strings.TrimSpace(text); text != "" {
				items = append(items, models.SortItem{Text: text, Correct: layout.keys[i]})
			}
		}
	}
	prng.Shuffle(prng.New(prng.LengthSeed(src.markdown)), items)

	return &models.Activity{
		Question: c.contentPrompt(src),
		Items:    items,
		Labels:   parseLabels(src.doc.Get(sections.NameLabels), layout.keys),
	}
}

// parseLabels reads "key: value" lines. A key matches a side when it contains
// the side name, so "First box: Fruits" labels the first box.
func parseLabels(s sections.Section, keys [2]string) models.Labels {
	labels := models.Labels{}
	for _, line := range strings.Split(s.Raw, "\n") {
		line = listMarkerRe.ReplaceAllString(strings.TrimSpace(line), "")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		for _, side := range keys {
			if strings.Contains(key, side) {
				if _, dup := labels[side]; !dup {
					labels[side] = value
				}
				break
			}
		}
	}
	return labels
}
