package measure

import "sort"

// Measure ids shared with the quality model catalog.
const (
	IDServiceReplicationLevel               = "serviceReplicationLevel"
	IDStorageReplicationLevel               = "storageReplicationLevel"
	IDStorageShardingLevel                  = "storageShardingLevel"
	IDRatioOfEndpointsSupportingTLS         = "ratioOfEndpointsSupportingTls"
	IDTLSToNonTLSEndpointRatio              = "tlsToNonTlsEndpointRatio"
	IDRatioOfExternalEndpointsSupportingTLS = "ratioOfExternalEndpointsSupportingTls"
	IDAverageDataAggregateCoupling          = "averageDataAggregateCoupling"
	IDAverageSharedCallerCoupling           = "averageSharedCallerCoupling"
	IDAverageSharedCalleeCoupling           = "averageSharedCalleeCoupling"
	IDMaximumRequestTraceCoupling           = "maximumRequestTraceCoupling"
	IDAverageRequestTraceCoOccurrence       = "averageRequestTraceCoOccurrence"
	IDAverageRequestTraceLength             = "averageRequestTraceLength"
	IDNumberOfCyclesInRequestTraces         = "numberOfCyclesInRequestTraces"
	IDAverageShortestPathLength             = "averageShortestPathLength"
	IDRatioOfAsynchronousLinks              = "ratioOfAsynchronousLinks"
	IDRatioOfSharedDataAggregates           = "ratioOfSharedDataAggregates"
	IDRatioOfExternalEndpointsOnProxies     = "ratioOfExternalEndpointsOnProxies"
	IDRatioOfManagedInfrastructure          = "ratioOfManagedInfrastructure"
	IDDominantCommunicationPattern          = "dominantCommunicationPattern"
	IDNumberOfExternalEndpoints             = "numberOfExternalEndpoints"
	IDAverageFanOut                         = "averageFanOut"
)

var systemMeasures = map[string]SystemFunc{
	IDServiceReplicationLevel:               ServiceReplicationLevel,
	IDStorageReplicationLevel:               StorageReplicationLevel,
	IDStorageShardingLevel:                  StorageShardingLevel,
	IDRatioOfEndpointsSupportingTLS:         RatioOfEndpointsSupportingTLS,
	IDTLSToNonTLSEndpointRatio:              TLSToNonTLSEndpointRatio,
	IDRatioOfExternalEndpointsSupportingTLS: RatioOfExternalEndpointsSupportingTLS,
	IDAverageDataAggregateCoupling:          averageOverPairs(DataAggregateCoupling),
	IDAverageSharedCallerCoupling:           averageOverPairs(SharedCallerCoupling),
	IDAverageSharedCalleeCoupling:           averageOverPairs(SharedCalleeCoupling),
	IDMaximumRequestTraceCoupling:           MaximumRequestTraceCoupling,
	IDAverageRequestTraceCoOccurrence:       averageOverPairs(RequestTraceCoOccurrence),
	IDAverageRequestTraceLength:             AverageRequestTraceLength,
	IDNumberOfCyclesInRequestTraces:         NumberOfCyclesInRequestTraces,
	IDAverageShortestPathLength:             AverageShortestPathLength,
	IDRatioOfAsynchronousLinks:              RatioOfAsynchronousLinks,
	IDRatioOfSharedDataAggregates:           RatioOfSharedDataAggregates,
	IDRatioOfExternalEndpointsOnProxies:     RatioOfExternalEndpointsOnProxies,
	IDRatioOfManagedInfrastructure:          RatioOfManagedInfrastructure,
	IDDominantCommunicationPattern:          DominantCommunicationPattern,
	IDNumberOfExternalEndpoints:             NumberOfExternalEndpoints,
	IDAverageFanOut:                         AverageFanOut,
}

// Lookup returns the system measure registered under id.
func Lookup(id string) (SystemFunc, bool) {
	fn, ok := systemMeasures[id]
	return fn, ok
}

// IDs returns every registered system measure id, sorted.
func IDs() []string {
	ids := make([]string, 0, len(systemMeasures))
	for id := range systemMeasures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
