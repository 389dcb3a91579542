package opower

const billsOperationName = "WDB_GetCostUsageReadsForBills"

const billsQuery = `query WDB_GetCostUsageReadsForBills($customerURN: ID, $last: Int, $timeInterval: TimeInterval, $forceLegacyData: Boolean, $aliased: Boolean) {
  billingAccountByAuthContext(
    singlePremise: $customerURN
    forceLegacyData: $forceLegacyData
  ) {
    urn
    bills(
      last: $last
      during: $timeInterval
      orderBy: ASCENDING
      preserveDuplicateSegments: true
    ) {
      urn
      timeInterval
      segments {
        urn
        usageInterval
        serviceAgreement(aliased: $aliased) {
          urn
          uuid
          serviceType
          __typename
        }
        estimated
        serviceQuantities {
          unit
          serviceQuantityIdentifier
          serviceQuantity {
            value
            __typename
          }
          __typename
        }
        usageCharges {
          value
          __typename
        }
        currentAmount {
          value
          __typename
        }
        deferredNEMCharges {
          value
          __typename
        }
        totalNEMCharges {
          value
          __typename
        }
        energyPurchased {
          value
          __typename
        }
        energySold {
          value
          __typename
        }
        rolloverBalanceEarned {
          value
          __typename
        }
        rolloverBalanceUsed {
          value
          __typename
        }
        totalEnergyCosts {
          value
          __typename
        }
        __typename
      }
      __typename
    }
    __typename
  }
}`
