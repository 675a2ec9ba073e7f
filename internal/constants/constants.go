package constants

import "time"

const DefaultClientID = "huectl"
const DefaultRequestTimeout = 2 * time.Second

// write throttling
const DefaultRateLimitMax = 25
const DefaultRateLimitWindow = time.Second
const DefaultRateLimitPollInterval = 100 * time.Millisecond

// discovery
const DiscoveryDeviceURN = "urn:schemas-upnp-org:device:basic:1"
const DiscoveryFriendlyNamePrefix = "Philips hue"
const DiscoveryMDNSService = "_hue._tcp"
const DiscoveryMDNSDomain = "local."
const DefaultDiscoveryTimeout = 5 * time.Second

const DiscoveryMethodSSDP = "ssdp"
const DiscoveryMethodMDNS = "mdns"
const DiscoveryMethodCloud = "cloud"
const DiscoveryMethodAll = "all"

// bridge api error types
const APIErrorUnauthorizedUser = 1
const APIErrorLinkButtonNotPressed = 101

// presets
const HueRangeMax = 65535
const HueRangeStep = 5000
const PoliceLightsInterval = 100 * time.Millisecond
const DefaultPresetInterval = time.Second
