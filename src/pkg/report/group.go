package report

import (
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/region"
)

// RegionGroup is the block of records that share one region.
type RegionGroup struct {
	Key         string             `json:"key"`
	DisplayCode string             `json:"displayCode"`
	Records     []AggregatedRecord `json:"records"`
}

/*
GroupByRegion partitions records by internal region key, keeping the order in
which regions and records are first seen. Records whose region cannot be
resolved are returned separately as unregistered.
*/
func GroupByRegion(records []AggregatedRecord, resolver region.Resolver) (groups []RegionGroup, unregistered []AggregatedRecord) {
	indexByKey := make(map[string]int)

	for _, record := range records {
		key, ok := record.RegionKey, record.RegionKey != ""
		if !ok {
			key, ok = resolver.Resolve(record.Region, record.RegionCode, record.LGU)
		}
		if !ok {
			unregistered = append(unregistered, record)
			continue
		}

		index, exists := indexByKey[key]
		if !exists {
			index = len(groups)
			indexByKey[key] = index
			groups = append(groups, RegionGroup{Key: key, DisplayCode: region.ToDisplayCode(key)})
		}
		record.RegionKey = key
		groups[index].Records = append(groups[index].Records, record)
	}

	if len(unregistered) > 0 {
		tl.Log(
			tl.Warning, palette.Yellow, "'%v' records have no resolvable region and are reported as unregistered",
			len(unregistered),
		)
	}
	return groups, unregistered
}

// Flatten returns every grouped record in group order.
func Flatten(groups []RegionGroup) (records []AggregatedRecord) {
	for _, group := range groups {
		records = append(records, group.Records...)
	}
	return records
}
