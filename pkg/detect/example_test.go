package detect_test

import (
	"fmt"

	"github.com/matzehuels/reqtrace/pkg/detect"
)

func ExampleDetectSystemType() {
	for _, text := range []string{
		"I need a smart home energy management system",
		"The autonomous vehicle shares data with a smart home hub.",
		"",
	} {
		p := detect.DetectSystemType(text)
		fmt.Println(p.IDCode, p.TypeName)
	}
	// Output:
	// EMS Energy Management System
	// AV Autonomous Vehicle
	// SYS Generic System
}
