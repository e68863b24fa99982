package utils

import (
	"sort"

	"github.com/emirpasic/gods/sets/hashset"
)

func List2set[T any](list []T) *hashset.Set {
	set := hashset.New()
	for _, value := range list {
		set.Add(value)
	}
	return set
}

// Set2StringList 把set转成排好序的list，非string元素会被忽略
func Set2StringList(set *hashset.Set) []string {
	answer := make([]string, 0, set.Size())
	for _, value := range set.Values() {
		if s, ok := value.(string); ok {
			answer = append(answer, s)
		}
	}
	sort.Strings(answer)
	return answer
}
