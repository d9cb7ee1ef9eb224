// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/webitof/crmdash/internal/model"
	"github.com/webitof/crmdash/internal/ui/styles"
	"github.com/webitof/crmdash/internal/util"
)

// BarChart renders a horizontal bar chart from breakdown buckets. The
// longest bar fills barWidth cells; labels are padded to labelWidth.
func BarChart(theme *styles.Theme, buckets []model.BucketCount, labelWidth, barWidth int) string {
	if len(buckets) == 0 {
		return theme.MutedText.Render("no data")
	}

	max := 0
	for _, b := range buckets {
		if b.Count > max {
			max = b.Count
		}
	}

	var lines []string
	for _, b := range buckets {
		cells := 0
		if max > 0 {
			cells = b.Count * barWidth / max
		}
		if b.Count > 0 && cells == 0 {
			cells = 1
		}
		line := theme.ChartLabel.Render(util.PadWidth(b.Name, labelWidth)) +
			" " + theme.ChartBar.Render(strings.Repeat("█", cells)) +
			theme.MutedText.Render(fmt.Sprintf(" %d", b.Count))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
