package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBlue  = lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FAFFF"}
	colorGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	colorAmber = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(colorAmber)
)

const logo = `░█░█░█▀▀░░░▀█▀░█░█░█▀█░█▀█░█▀▀░█░░░░░█▀▀░█▀▀░▀█▀░█░█░█▀█
░█▀█░█▀▀░░░░█░░█░█░█░█░█░█░█▀▀░█░░░░░▀▀█░█▀▀░░█░░█░█░█▀▀
░▀░▀░▀▀▀░░░░▀░░▀▀▀░▀░▀░▀░▀░▀▀▀░▀▀▀░░░▀▀▀░▀▀▀░░▀░░▀▀▀░▀░░`

// DetailsMessage explains where each input is found on tunnelbroker.net.
const DetailsMessage = `To continue we need the HE tunnel details:

  (1) HE Server IPv4 Address
      The "Server IPv4 Address" under "IPv6 Tunnel Endpoints".
  (2) HE Client IPv6 Address
      The "Client IPv6 Address" under "IPv6 Tunnel Endpoints".
  (3) Client Address
      The IPv4 address of this machine, as provided to HE.
  (4) Routed Address
      The routed IPv6 prefix including the /48 or /64, under "Routed IPv6 Prefixes".`

// NoBindMessage tells the operator how to finish by hand when the
// non-local bind setting could not be applied.
const NoBindMessage = `Unable to enable IPv6 non-local bind automatically. Run these commands manually:

    sudo sysctl -w net.ipv6.ip_nonlocal_bind=1
    echo 'net.ipv6.ip_nonlocal_bind = 1' | sudo tee -a /etc/sysctl.conf

Then validate the tunnel with:

    ping -6 -c 4 google.com

If you have issues, check the tunnel details and run he-tunnel again.`

// ProbeFailedMessage is printed when the connectivity probe fails.
const ProbeFailedMessage = "Could not validate the IPv6 tunnel. If you have issues, check the tunnel details and run he-tunnel again."

// SuccessMessage is printed after a successful probe.
const SuccessMessage = "Successfully set up the HE IPv6 tunnel."

// Banner writes the program banner.
func Banner(w io.Writer) {
	fmt.Fprintln(w, bannerStyle.Render(logo))
	fmt.Fprintln(w)
}

// Success writes msg in the success style.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

// Warn writes msg in the warning style.
func Warn(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render(msg))
}
