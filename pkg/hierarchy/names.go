package hierarchy

import "fmt"

var defaultLevelNames = map[int]string{
	1: "Level1_LegalEntity",
	2: "Level2_BusinessUnit",
	3: "Level3_Division",
	4: "Level4_SubDivision",
	5: "Level5_Department",
	6: "Level6_SubDepartment",
	7: "Level7_Team",
}

// DefaultLevelName returns the conventional file name for a level. Levels
// past the named ones are generic units.
func DefaultLevelName(level int) string {
	if name, ok := defaultLevelNames[level]; ok {
		return name
	}
	return fmt.Sprintf("Level%d_Unit", level)
}
