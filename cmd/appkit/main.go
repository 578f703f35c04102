package main

import "github.com/GriffinCanCode/appkit/pkg/kit"

func main() {
	kit.Main()
}
