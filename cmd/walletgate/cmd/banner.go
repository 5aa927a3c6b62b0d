package cmd

import (
	"fmt"
)

const banner = `
 __          __   _ _      _    _____       _
 \ \        / /  | | |    | |  / ____|     | |
  \ \  /\  / /_ _| | | ___| |_| |  __  __ _| |_ ___
   \ \/  \/ / _` + "`" + ` | | |/ _ \ __| | |_ |/ _` + "`" + ` | __/ _ \
    \  /\  / (_| | | |  __/ |_| |__| | (_| | ||  __/
     \/  \/ \__,_|_|_|\___|\__|\_____|\__,_|\__\___|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Wallet Session Gateway - Version %s\x1b[0m\n\n", Version)
}
