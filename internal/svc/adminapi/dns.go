package adminapi

import (
	"context"
	"strings"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	"github.com/mkrupp/mailosaurus-admin/internal/svc/adminclient"
)

const (
	dnsCustomPath    = "/dns/custom"
	dnsZonesPath     = "/dns/zones"
	dnsUpdatePath    = "/dns/update"
	dnsSecondaryPath = "/dns/secondary-nameserver"
	dnsDumpPath      = "/dns/dump"
	dnsZoneFilePath  = "/dns/zonefile"
)

// ListCustomRecords returns the custom DNS records.
func (a *API) ListCustomRecords(ctx context.Context) domain.Envelope[[]domain.DNSRecord] {
	return decodeList[domain.DNSRecord](a.client.Get(ctx, dnsCustomPath))
}

// ListZones returns the DNS zones served by the box.
func (a *API) ListZones(ctx context.Context) domain.Envelope[[]string] {
	return decodeList[string](a.client.Get(ctx, dnsZonesPath))
}

// AddCustomRecord adds a record; the value travels as a plain text body.
func (a *API) AddCustomRecord(ctx context.Context, qname, rtype, value string) domain.Envelope[string] {
	path := endpoint(dnsCustomPath, qname, strings.ToUpper(rtype))

	return adminclient.Text(a.client.Post(ctx, path, value))
}

// RemoveCustomRecord removes the record matching qname, rtype and value.
func (a *API) RemoveCustomRecord(ctx context.Context, qname, rtype, value string) domain.Envelope[string] {
	path := endpoint(dnsCustomPath, qname, strings.ToUpper(rtype))

	return adminclient.Text(a.client.Delete(ctx, path, value))
}

// UpdateDNS regenerates the zone files. force rewrites them even when unchanged.
func (a *API) UpdateDNS(ctx context.Context, force bool) domain.Envelope[string] {
	var body any
	if force {
		body = adminclient.NewForm().Add("force", "1")
	}

	return adminclient.Text(a.client.Post(ctx, dnsUpdatePath, body))
}

// SecondaryNameservers returns the hostnames allowed to transfer zones.
func (a *API) SecondaryNameservers(ctx context.Context) domain.Envelope[domain.SecondaryNameservers] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.SecondaryNameservers](a.client.Get(ctx, dnsSecondaryPath)),
		func(ns domain.SecondaryNameservers) (domain.SecondaryNameservers, error) {
			if ns.Hostnames == nil {
				ns.Hostnames = domain.StringList{}
			}

			return ns, nil
		},
	)
}

// SetSecondaryNameservers replaces the secondary nameserver list. An empty list clears it.
func (a *API) SetSecondaryNameservers(ctx context.Context, hostnames []string) domain.Envelope[string] {
	form := adminclient.NewForm().Add("hostnames", domain.StringList(hostnames).String())

	return adminclient.Text(a.client.Post(ctx, dnsSecondaryPath, form))
}

// DumpDNS returns the records the box recommends to set at an external DNS provider.
func (a *API) DumpDNS(ctx context.Context) domain.Envelope[domain.DNSRecommendations] {
	return domain.MapEnvelope(
		adminclient.Decode[domain.DNSRecommendations](a.client.Get(ctx, dnsDumpPath)),
		func(recs domain.DNSRecommendations) (domain.DNSRecommendations, error) {
			if recs == nil {
				recs = domain.DNSRecommendations{}
			}

			return recs, nil
		},
	)
}

// ZoneFile returns the BIND zone file of zone.
func (a *API) ZoneFile(ctx context.Context, zone string) domain.Envelope[string] {
	return adminclient.Text(a.client.Get(ctx, endpoint(dnsZoneFilePath, zone)))
}
