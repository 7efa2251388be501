/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package main

import (
	"github.com/herdwise/feedopt/pkg/cli"
)

func main() {
	cli.Execute()
}
